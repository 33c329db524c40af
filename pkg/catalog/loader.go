package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a catalog from a JSON or YAML file, chosen by extension,
// and validates it. The file name (without extension) becomes the
// catalog's FileName.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c Catalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catalog JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal catalog YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog file extension %q", ext)
	}

	c.FileName = filepath.Base(path)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", c.FileName, err)
	}
	return &c, nil
}
