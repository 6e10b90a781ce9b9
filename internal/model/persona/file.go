package persona

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type personaFile struct {
	Personas []Persona `toml:"persona"`
}

// LoadFile reads [[persona]] tables from a TOML file and merges them over base.
// Entries with a known ID replace the base entry field by field; unknown IDs are appended.
func LoadFile(path string, base []Persona) ([]Persona, error) {
	var file personaFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode persona file %s: %w", path, err)
	}
	return Merge(base, file.Personas)
}

// Merge applies overrides on top of base.
func Merge(base, overrides []Persona) ([]Persona, error) {
	merged := append([]Persona(nil), base...)

	for i, override := range overrides {
		id := strings.TrimSpace(override.ID)
		if id == "" {
			return nil, fmt.Errorf("persona #%d: id is required", i+1)
		}
		override.ID = id
		if override.Density != "" && override.Density != DensityCompact && override.Density != DensityComfortable {
			return nil, fmt.Errorf("persona %s: unknown density %q", id, override.Density)
		}

		idx := indexOf(merged, id)
		if idx < 0 {
			if override.Density == "" {
				override.Density = DensityComfortable
			}
			merged = append(merged, override)
			continue
		}
		merged[idx] = overlay(merged[idx], override)
	}

	return merged, nil
}

func indexOf(items []Persona, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func overlay(dst, src Persona) Persona {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Tagline != "" {
		dst.Tagline = src.Tagline
	}
	if src.Greeting != "" {
		dst.Greeting = src.Greeting
	}
	if src.Preamble != "" {
		dst.Preamble = src.Preamble
	}
	if src.Attribution != "" {
		dst.Attribution = src.Attribution
	}
	if src.Density != "" {
		dst.Density = src.Density
	}
	return dst
}
