package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[cameras]\nname ="), 0o644))

	s, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestParseFillsDefaults(t *testing.T) {
	s, err := Parse([]byte(`
[[cameras]]
name = "Dock"
url = "rtsp://10.0.0.4/stream"

[capture]
fps = 25.0
`))
	require.NoError(t, err)

	require.Len(t, s.Cameras, 2)
	assert.Equal(t, LocalCameraName, s.Cameras[0].Name)
	assert.Equal(t, "Dock", s.Cameras[1].Name)

	assert.Equal(t, 25.0, s.Capture.FPS)
	assert.Equal(t, 2.0, s.Capture.Seconds)
	assert.Equal(t, "captures", s.Capture.Session)
	assert.Equal(t, Default().Overlay, s.Overlay)
}

func TestParseRejectsBadColour(t *testing.T) {
	_, err := Parse([]byte("[overlay]\noutline = \"green\"\n"))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "settings.toml")

	s := Default()
	require.NoError(t, s.AddCamera("Bench", "http://bench.local/video"))
	s.Capture.FPS = 5
	s.Overlay.Highlight = "#0000ff"
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestCameraManagement(t *testing.T) {
	s := Default()

	require.NoError(t, s.AddCamera("Line 1", "1"))
	assert.ErrorIs(t, s.AddCamera("Line 1", "2"), ErrDuplicateCamera)
	assert.Error(t, s.AddCamera("  ", "3"))

	c, ok := s.Camera("Line 1")
	require.True(t, ok)
	assert.Equal(t, "1", c.URL)

	assert.Equal(t, []Camera{{Name: "Line 1", URL: "1"}}, s.RemovableCameras())

	assert.ErrorIs(t, s.RemoveCamera(LocalCameraName), ErrProtectedCamera)
	assert.ErrorIs(t, s.RemoveCamera("nope"), ErrUnknownCamera)
	require.NoError(t, s.RemoveCamera("Line 1"))
	assert.Empty(t, s.RemovableCameras())
	assert.Len(t, s.Cameras, 1)
}

func TestOverlayStyle(t *testing.T) {
	style, err := Default().Overlay.Style()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, style.Outline)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, style.Highlight)
	assert.Equal(t, 2, style.OutlineThickness)
	assert.Equal(t, 3, style.HighlightThickness)

	o := OverlaySettings{Outline: "#12ab34", Highlight: "#FFA500", OutlineThickness: 1, HighlightThickness: 4}
	style, err = o.Style()
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x12, G: 0xab, B: 0x34, A: 255}, style.Outline)
	assert.Equal(t, color.RGBA{R: 255, G: 165, A: 255}, style.Highlight)
}
