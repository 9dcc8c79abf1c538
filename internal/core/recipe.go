// Recipes: step sequences stored as TOML
package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Recipe is a named, ordered list of steps.
type Recipe struct {
	Name        string
	Description string
	Steps       []Step
}

type recipeFile struct {
	Name        string       `toml:"name,omitempty"`
	Description string       `toml:"description,omitempty"`
	Steps       []recipeStep `toml:"steps"`
}

type recipeStep struct {
	Kind   recipeKind   `toml:"kind"`
	Option int          `toml:"option"`
	Param1 recipeNumber `toml:"param1"`
	Param2 recipeNumber `toml:"param2"`
}

// recipeKind is written as a name and read from a name or a number.
type recipeKind Kind

func (k recipeKind) MarshalText() ([]byte, error) {
	if !Kind(k).Valid() {
		return nil, fmt.Errorf("unknown step kind %d", int(k))
	}
	return []byte(Kind(k).String()), nil
}

func (k *recipeKind) UnmarshalTOML(v interface{}) error {
	switch t := v.(type) {
	case string:
		parsed, err := ParseKind(t)
		if err != nil {
			return err
		}
		*k = recipeKind(parsed)
	case int64:
		if !Kind(t).Valid() {
			return fmt.Errorf("unknown step kind %d", t)
		}
		*k = recipeKind(t)
	default:
		return fmt.Errorf("step kind must be a name or a number, got %T", v)
	}
	return nil
}

// recipeNumber accepts both integer and float literals.
type recipeNumber float64

func (n *recipeNumber) UnmarshalTOML(v interface{}) error {
	switch t := v.(type) {
	case int64:
		*n = recipeNumber(t)
	case float64:
		*n = recipeNumber(t)
	default:
		return fmt.Errorf("parameter must be numeric, got %T", v)
	}
	return nil
}

// ParseRecipe decodes a TOML recipe.
func ParseRecipe(data []byte) (Recipe, error) {
	var f recipeFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return Recipe{}, fmt.Errorf("parse recipe: %w", err)
	}

	r := Recipe{Name: f.Name, Description: f.Description}
	for i, s := range f.Steps {
		if !Kind(s.Kind).Valid() {
			return Recipe{}, fmt.Errorf("parse recipe: step %d: missing kind", i)
		}
		r.Steps = append(r.Steps, Step{
			Kind:   Kind(s.Kind),
			Option: s.Option,
			Param1: float64(s.Param1),
			Param2: float64(s.Param2),
		})
	}
	return r, nil
}

// LoadRecipe reads a recipe file.
func LoadRecipe(path string) (Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recipe{}, fmt.Errorf("read recipe: %w", err)
	}
	return ParseRecipe(data)
}

// Encode writes r as TOML.
func (r Recipe) Encode() ([]byte, error) {
	f := recipeFile{Name: r.Name, Description: r.Description}
	for _, s := range r.Steps {
		f.Steps = append(f.Steps, recipeStep{
			Kind:   recipeKind(s.Kind),
			Option: s.Option,
			Param1: recipeNumber(s.Param1),
			Param2: recipeNumber(s.Param2),
		})
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("encode recipe: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveRecipe writes r to path, creating parent directories.
func SaveRecipe(path string, r Recipe) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create recipe directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write recipe: %w", err)
	}
	return nil
}
