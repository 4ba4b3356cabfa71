package wl

import "deedles.dev/paber/wire"

// Output is a wl_output. Its fields are updated as events arrive and
// are consistent after each OutputDone.
type Output struct {
	Proxy
	Version uint32

	Name        string
	Description string
	Make        string
	Model       string
	Width       int32
	Height      int32
	Scale       int32
	Transform   OutputTransform
}

type OutputGeometry struct {
	X, Y           int32
	PhysicalWidth  int32
	PhysicalHeight int32
	Subpixel       int32
	Make           string
	Model          string
	Transform      OutputTransform
}

type OutputMode struct {
	Flags   OutputModeFlags
	Width   int32
	Height  int32
	Refresh int32
}

type OutputDone struct{}

type OutputScale struct {
	Factor int32
}

type OutputName struct {
	Name string
}

type OutputDescription struct {
	Description string
}

// BindOutput binds the wl_output global with the given name.
func BindOutput(state *State, name, version uint32) *Output {
	output := Output{
		Proxy:   NewProxy(state),
		Version: version,
		Scale:   1,
	}
	state.Display().GetRegistry().Bind(name, &output, version)
	return &output
}

func (output *Output) Interface() string {
	return OutputInterface
}

func (output *Output) MethodName(op uint16) string {
	switch op {
	case 0:
		return "geometry"
	case 1:
		return "mode"
	case 2:
		return "done"
	case 3:
		return "scale"
	case 4:
		return "name"
	case 5:
		return "description"
	}
	return "unknown"
}

func (output *Output) Dispatch(msg *wire.MessageBuffer) (any, error) {
	switch msg.Op() {
	case 0:
		ev := OutputGeometry{
			X:              msg.ReadInt(),
			Y:              msg.ReadInt(),
			PhysicalWidth:  msg.ReadInt(),
			PhysicalHeight: msg.ReadInt(),
			Subpixel:       msg.ReadInt(),
			Make:           msg.ReadString(),
			Model:          msg.ReadString(),
			Transform:      OutputTransform(msg.ReadInt()),
		}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		output.Make = ev.Make
		output.Model = ev.Model
		output.Transform = ev.Transform
		return ev, nil

	case 1:
		ev := OutputMode{
			Flags:   OutputModeFlags(msg.ReadUint()),
			Width:   msg.ReadInt(),
			Height:  msg.ReadInt(),
			Refresh: msg.ReadInt(),
		}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		if ev.Flags&OutputModeCurrent != 0 {
			output.Width = ev.Width
			output.Height = ev.Height
		}
		return ev, nil

	case 2:
		return OutputDone{}, nil

	case 3:
		ev := OutputScale{Factor: msg.ReadInt()}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		output.Scale = ev.Factor
		return ev, nil

	case 4:
		ev := OutputName{Name: msg.ReadString()}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		output.Name = ev.Name
		return ev, nil

	case 5:
		ev := OutputDescription{Description: msg.ReadString()}
		if err := msg.Err(); err != nil {
			return nil, err
		}
		output.Description = ev.Description
		return ev, nil
	}

	return nil, wire.UnknownOpError{Interface: OutputInterface, Type: "event", Op: msg.Op()}
}

// Release tells the compositor that the output object is no longer
// used. It is only available from version 3 and does nothing on older
// objects.
func (output *Output) Release() {
	if output.Version < 3 {
		return
	}

	msg := wire.NewMessage(output, 0, "release")
	output.state.Enqueue(msg)
}
