package director

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for scene files that are neither YAML nor JSON
var ErrUnsupportedFormat = errors.New("unsupported scene format")

func sceneFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// WriteScene writes a scene to a YAML or JSON file, chosen by extension
func WriteScene(scene *Scene, path string) error {
	format, err := sceneFormat(path)
	if err != nil {
		return err
	}

	var data []byte
	if format == "json" {
		data, err = json.MarshalIndent(scene, "", "  ")
	} else {
		data, err = yaml.Marshal(scene)
	}
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScene reads a scene from a YAML or JSON file. The result is not
// sanitized.
func ReadScene(path string) (*Scene, error) {
	format, err := sceneFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scene Scene
	if format == "json" {
		err = json.Unmarshal(data, &scene)
	} else {
		err = yaml.Unmarshal(data, &scene)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &scene, nil
}
