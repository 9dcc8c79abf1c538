// Persistent settings: cameras, overlay style and capture defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"contour-inspector/internal/contour"
)

// DefaultPath is where settings live unless -config says otherwise.
const DefaultPath = "config/settings.toml"

// LocalCameraName is the built-in webcam entry. It cannot be removed.
const LocalCameraName = "Webcam Local"

var (
	ErrProtectedCamera = errors.New("camera is protected")
	ErrDuplicateCamera = errors.New("camera already exists")
	ErrUnknownCamera   = errors.New("camera not found")
)

// Camera is a named capture source. URL is a device index ("0") or a stream/file URL.
type Camera struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// OverlaySettings holds the contour drawing style with hex colours.
type OverlaySettings struct {
	Outline            string `toml:"outline"`
	OutlineThickness   int    `toml:"outline_thickness"`
	Highlight          string `toml:"highlight"`
	HighlightThickness int    `toml:"highlight_thickness"`
}

// CaptureSettings are the defaults for capture sessions.
type CaptureSettings struct {
	FPS        float64 `toml:"fps"`
	Seconds    float64 `toml:"seconds"`
	Session    string  `toml:"session"`
	OutputRoot string  `toml:"output_root"`
}

// Settings is the whole settings file.
type Settings struct {
	Cameras []Camera        `toml:"cameras"`
	Overlay OverlaySettings `toml:"overlay"`
	Capture CaptureSettings `toml:"capture"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Cameras: []Camera{{Name: LocalCameraName, URL: "0"}},
		Overlay: OverlaySettings{
			Outline:            "#00ff00",
			OutlineThickness:   2,
			Highlight:          "#ff0000",
			HighlightThickness: 3,
		},
		Capture: CaptureSettings{
			FPS:        10,
			Seconds:    2,
			Session:    "captures",
			OutputRoot: ".",
		},
	}
}

// Load reads settings from path. A missing file yields the defaults; missing
// sections and fields are filled from the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return Parse(data)
}

// Parse decodes settings from TOML.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	def := Default()
	if !md.IsDefined("cameras") {
		s.Cameras = def.Cameras
	}
	s.ensureLocalCamera()
	s.Overlay.fill(def.Overlay)
	s.Capture.fill(def.Capture)

	if _, err := s.Overlay.Style(); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &s, nil
}

func (o *OverlaySettings) fill(def OverlaySettings) {
	if o.Outline == "" {
		o.Outline = def.Outline
	}
	if o.OutlineThickness <= 0 {
		o.OutlineThickness = def.OutlineThickness
	}
	if o.Highlight == "" {
		o.Highlight = def.Highlight
	}
	if o.HighlightThickness <= 0 {
		o.HighlightThickness = def.HighlightThickness
	}
}

func (c *CaptureSettings) fill(def CaptureSettings) {
	if c.FPS <= 0 {
		c.FPS = def.FPS
	}
	if c.Seconds <= 0 {
		c.Seconds = def.Seconds
	}
	if strings.TrimSpace(c.Session) == "" {
		c.Session = def.Session
	}
	if c.OutputRoot == "" {
		c.OutputRoot = def.OutputRoot
	}
}

// ensureLocalCamera keeps the protected webcam entry first in the list.
func (s *Settings) ensureLocalCamera() {
	for _, c := range s.Cameras {
		if c.Name == LocalCameraName {
			return
		}
	}
	s.Cameras = append([]Camera{{Name: LocalCameraName, URL: "0"}}, s.Cameras...)
}

// Save writes s to path, creating the parent directory.
func (s *Settings) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Camera looks up a camera by name.
func (s *Settings) Camera(name string) (Camera, bool) {
	for _, c := range s.Cameras {
		if c.Name == name {
			return c, true
		}
	}
	return Camera{}, false
}

// AddCamera appends a camera. Names must be unique and non-empty.
func (s *Settings) AddCamera(name, url string) error {
	name, url = strings.TrimSpace(name), strings.TrimSpace(url)
	if name == "" || url == "" {
		return fmt.Errorf("camera name and url are required")
	}
	if _, exists := s.Camera(name); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCamera, name)
	}
	s.Cameras = append(s.Cameras, Camera{Name: name, URL: url})
	return nil
}

// RemoveCamera deletes a camera by name. The local webcam is protected.
func (s *Settings) RemoveCamera(name string) error {
	if name == LocalCameraName {
		return fmt.Errorf("%w: %s", ErrProtectedCamera, name)
	}
	for i, c := range s.Cameras {
		if c.Name == name {
			s.Cameras = append(s.Cameras[:i], s.Cameras[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownCamera, name)
}

// RemovableCameras lists every camera except the protected one.
func (s *Settings) RemovableCameras() []Camera {
	var out []Camera
	for _, c := range s.Cameras {
		if c.Name != LocalCameraName {
			out = append(out, c)
		}
	}
	return out
}

// Style converts the overlay settings into a contour drawing style.
func (o OverlaySettings) Style() (contour.Style, error) {
	outline, err := parseColor(o.Outline)
	if err != nil {
		return contour.Style{}, fmt.Errorf("outline colour: %w", err)
	}
	highlight, err := parseColor(o.Highlight)
	if err != nil {
		return contour.Style{}, fmt.Errorf("highlight colour: %w", err)
	}
	return contour.Style{
		Outline:            outline,
		OutlineThickness:   o.OutlineThickness,
		Highlight:          highlight,
		HighlightThickness: o.HighlightThickness,
	}, nil
}

func parseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
