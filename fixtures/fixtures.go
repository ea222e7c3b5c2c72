// Package fixtures holds the JSON fixtures used by the suites and the seed
// task. A file of the same name in an override directory takes precedence
// over the embedded copy.
package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.json
var embedded embed.FS

// Read returns the raw bytes of fixture name, looking in dir first.
func Read(dir, name string) ([]byte, error) {
	clean := filepath.Clean(name)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("fixture name %q must be relative to the fixtures directory", name)
	}

	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, clean))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
	}

	data, err := embedded.ReadFile(filepath.ToSlash(clean))
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", name, err)
	}
	return data, nil
}

// Decode reads fixture name and unmarshals its JSON into v.
func Decode(dir, name string, v any) error {
	data, err := Read(dir, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return nil
}
