package wl

// Interface names and the highest versions implemented by this package.
const (
	DisplayInterface = "wl_display"
	DisplayVersion   = 1

	RegistryInterface = "wl_registry"
	RegistryVersion   = 1

	CallbackInterface = "wl_callback"
	CallbackVersion   = 1

	CompositorInterface = "wl_compositor"
	CompositorVersion   = 4

	SurfaceInterface = "wl_surface"
	SurfaceVersion   = 4

	ShmInterface = "wl_shm"
	ShmVersion   = 1

	ShmPoolInterface = "wl_shm_pool"
	ShmPoolVersion   = 1

	BufferInterface = "wl_buffer"
	BufferVersion   = 1

	OutputInterface = "wl_output"
	OutputVersion   = 4
)

// ShmFormat is a pixel format. Values other than the two mandatory
// formats are DRM fourcc codes.
type ShmFormat uint32

const (
	ShmFormatArgb8888 ShmFormat = 0
	ShmFormatXrgb8888 ShmFormat = 1
)

func (f ShmFormat) String() string {
	switch f {
	case ShmFormatArgb8888:
		return "argb8888"
	case ShmFormatXrgb8888:
		return "xrgb8888"
	}

	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	return string(b)
}

// OutputModeFlags describe a mode advertised by an output.
type OutputModeFlags uint32

const (
	OutputModeCurrent   OutputModeFlags = 0x1
	OutputModePreferred OutputModeFlags = 0x2
)

// OutputTransform describes how an output's content is rotated or
// flipped.
type OutputTransform int32

const (
	OutputTransformNormal OutputTransform = iota
	OutputTransform90
	OutputTransform180
	OutputTransform270
	OutputTransformFlipped
	OutputTransformFlipped90
	OutputTransformFlipped180
	OutputTransformFlipped270
)
