package generate_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"deedles.dev/paber/internal/generate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-stable-diffusion")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestLocal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wallpaper.png")
	gen := generate.Local{
		Command: script(t, `printf '%s %s' "$2" "$6" > sd_final.png`),
		Nice:    19,
		Dir:     t.TempDir(),
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	require.NoError(t, gen.Generate(context.Background(), "a quiet lake", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a quiet lake 100", string(data))
}

func TestLocalNoResult(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wallpaper.png")
	gen := generate.Local{Command: script(t, "exit 0"), Nice: 19, Stdout: io.Discard, Stderr: io.Discard}

	err := gen.Generate(context.Background(), "prompt", out)
	assert.ErrorIs(t, err, generate.ErrNoImage)
	assert.NoFileExists(t, out)
}

func TestLocalFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wallpaper.png")
	gen := generate.Local{Command: script(t, "exit 3"), Nice: 19, Stdout: io.Discard, Stderr: io.Discard}

	err := gen.Generate(context.Background(), "prompt", out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, generate.ErrNoImage)
}

func gemini(t *testing.T, parts []map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !strings.HasSuffix(req.URL.Path, ":generateContent") {
			http.NotFound(w, req)
			return
		}

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				ResponseModalities []string `json:"responseModalities"`
			} `json:"generationConfig"`
		}
		if !assert.NoError(t, json.NewDecoder(req.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "a quiet lake", body.Contents[0].Parts[0].Text)
		assert.Equal(t, []string{"IMAGE"}, body.GenerationConfig.ResponseModalities)
		assert.Contains(t, req.URL.Path, generate.DefaultModel)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": parts,
					},
				},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRemote(t *testing.T) {
	server := gemini(t, []map[string]any{
		{"text": "Here is your wallpaper."},
		{"inlineData": map[string]any{
			"mimeType": "image/png",
			"data":     base64.StdEncoding.EncodeToString([]byte("png data")),
		}},
	})

	out := filepath.Join(t.TempDir(), "wallpaper.png")
	gen := generate.Remote{APIKey: "key", BaseURL: server.URL + "/"}
	require.NoError(t, gen.Generate(context.Background(), "a quiet lake", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "png data", string(data))
}

func TestRemoteNoImage(t *testing.T) {
	server := gemini(t, []map[string]any{{"text": "I can't draw that."}})

	out := filepath.Join(t.TempDir(), "wallpaper.png")
	gen := generate.Remote{APIKey: "key", BaseURL: server.URL + "/"}
	err := gen.Generate(context.Background(), "a quiet lake", out)
	assert.ErrorIs(t, err, generate.ErrNoImage)
	assert.NoFileExists(t, out)
}

func TestRemoteNoKey(t *testing.T) {
	err := generate.Remote{}.Generate(context.Background(), "prompt", filepath.Join(t.TempDir(), "out.png"))
	assert.Error(t, err)
}
