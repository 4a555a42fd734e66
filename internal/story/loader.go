package story

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type storyFile struct {
	Start  string            `yaml:"start"`
	Scenes map[string]*Scene `yaml:"scenes"`
}

// Load reads and validates a story file. Any malformed content is a fatal
// startup error for the caller.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}
	return Parse(data)
}

// Parse builds a validated library from raw YAML story content.
func Parse(data []byte) (*Library, error) {
	var file storyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse story file: %w", err)
	}
	if file.Scenes == nil {
		file.Scenes = map[string]*Scene{}
	}
	return NewLibrary(file.Start, file.Scenes)
}
