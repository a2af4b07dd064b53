// Package project persists maskroute configuration, custom rule profiles and
// backup bundles. Files ending in .json are written as JSON; everything else
// is YAML.
package project

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func marshal(path string, v any) ([]byte, error) {
	if isJSON(path) {
		return json.MarshalIndent(v, "", "  ")
	}
	return yaml.Marshal(v)
}

func unmarshal(path string, data []byte, v any) error {
	if isJSON(path) {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}
