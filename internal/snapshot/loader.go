// internal/snapshot/loader.go
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rovshanmuradov/memescope/internal/risk"
)

var ErrUnsupportedFormat = errors.New("unsupported snapshot file format")

// dataset is the object form of a snapshot file: {"tokens": [...]}.
type dataset struct {
	Tokens []risk.Snapshot `json:"tokens" yaml:"tokens"`
}

// LoadFile reads snapshots from a .json, .yaml or .yml file. The file may hold
// either a bare list of snapshots or an object with a "tokens" list.
func LoadFile(path string) ([]risk.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshots %s: %w", path, err)
	}

	var snaps []risk.Snapshot
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		snaps, err = decodeJSON(data)
	case ".yaml", ".yml":
		snaps, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse snapshots %s: %w", path, err)
	}
	return snaps, nil
}

func decodeJSON(data []byte) ([]risk.Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []risk.Snapshot{}, nil
	}
	if trimmed[0] == '[' {
		var snaps []risk.Snapshot
		if err := json.Unmarshal(trimmed, &snaps); err != nil {
			return nil, err
		}
		return snaps, nil
	}
	var ds dataset
	if err := json.Unmarshal(trimmed, &ds); err != nil {
		return nil, err
	}
	return nonNil(ds.Tokens), nil
}

func decodeYAML(data []byte) ([]risk.Snapshot, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	// empty document
	if len(node.Content) == 0 {
		return []risk.Snapshot{}, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var snaps []risk.Snapshot
		if err := root.Decode(&snaps); err != nil {
			return nil, err
		}
		return nonNil(snaps), nil
	}
	var ds dataset
	if err := root.Decode(&ds); err != nil {
		return nil, err
	}
	return nonNil(ds.Tokens), nil
}

func nonNil(s []risk.Snapshot) []risk.Snapshot {
	if s == nil {
		return []risk.Snapshot{}
	}
	return s
}
