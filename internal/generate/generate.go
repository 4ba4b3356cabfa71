// Package generate creates wallpaper images from text prompts.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Generator writes an image matching prompt to the file at out.
type Generator interface {
	Generate(ctx context.Context, prompt, out string) error
}

// DefaultModel is the Gemini model used by Remote if none is set.
const DefaultModel = "gemini-2.5-flash-image"

// ErrNoImage is returned when a generator finishes without producing an
// image.
var ErrNoImage = errors.New("no image was generated")

// Remote generates images with the Gemini API.
type Remote struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint.
	BaseURL string
}

func (r Remote) Generate(ctx context.Context, prompt, out string) error {
	if r.APIKey == "" {
		return errors.New("GEMINI_API_KEY must be set")
	}
	model := r.Model
	if model == "" {
		model = DefaultModel
	}

	config := genai.ClientConfig{
		APIKey:  r.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if r.BaseURL != "" {
		config.HTTPOptions.BaseURL = r.BaseURL
	}
	client, err := genai.NewClient(ctx, &config)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	log.Info().Str("model", model).Msg("sending prompt")
	rsp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	data, err := firstImage(rsp)
	if err != nil {
		return err
	}

	err = os.WriteFile(out, data, 0644)
	if err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	log.Info().Str("path", out).Msg("saved generated image")
	return nil
}

func firstImage(rsp *genai.GenerateContentResponse) ([]byte, error) {
	if (rsp == nil) || (len(rsp.Candidates) == 0) {
		return nil, ErrNoImage
	}

	content := rsp.Candidates[0].Content
	if content == nil {
		return nil, ErrNoImage
	}
	for _, part := range content.Parts {
		if (part != nil) && (part.InlineData != nil) && (len(part.InlineData.Data) > 0) {
			return part.InlineData.Data, nil
		}
	}
	return nil, ErrNoImage
}

// DefaultCommand is the executable run by Local if none is set.
const DefaultCommand = "stable-diffusion"

// Local generates images by running a stable-diffusion executable at
// the lowest scheduling priority.
type Local struct {
	Command string
	Nice    int

	// Dir is the working directory that the command writes its result
	// to. A temporary directory is used if it is empty.
	Dir string

	// Stdout and Stderr receive the command's output. They default to
	// the process's own.
	Stdout, Stderr io.Writer
}

// resultName is the file that stable-diffusion writes its image to.
const resultName = "sd_final.png"

func (l Local) Generate(ctx context.Context, prompt, out string) error {
	command := l.Command
	if command == "" {
		command = DefaultCommand
	}

	dir := l.Dir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "paber-generate-")
		if err != nil {
			return fmt.Errorf("create working directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	}

	cmd := exec.CommandContext(
		ctx,
		"nice", "-n", strconv.Itoa(l.Nice),
		command,
		"--prompt", prompt,
		"--sd-version", "v1-5",
		"--n-steps", "100",
	)
	cmd.Dir = dir
	cmd.Stdout = orDefault(l.Stdout, os.Stdout)
	cmd.Stderr = orDefault(l.Stderr, os.Stderr)

	log.Info().Str("command", command).Msg("running local image generation")
	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("run %v: %w", command, err)
	}

	result := filepath.Join(dir, resultName)
	if _, err := os.Stat(result); err != nil {
		return fmt.Errorf("%w: %v reported success but did not write %v", ErrNoImage, command, resultName)
	}

	err = move(result, out)
	if err != nil {
		return fmt.Errorf("move generated image: %w", err)
	}
	log.Info().Str("path", out).Msg("saved generated image")
	return nil
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// move renames src to dst, falling back to copying if they are on
// different filesystems.
func move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	outf, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, err = io.Copy(outf, in)
	if cerr := outf.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Remove(src)
}
