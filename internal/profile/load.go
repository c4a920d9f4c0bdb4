package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a profile document. Files ending in .yaml or
// .yml are decoded as YAML, everything else as JSON. Any failure here
// aborts the run before a single path is touched.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if p.Name == "" {
		return nil, fmt.Errorf("failed to parse profile: missing name")
	}
	return &p, nil
}
