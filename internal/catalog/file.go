package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

type fileFormat struct {
	Split  int           `yaml:"split"`
	Tracks []types.Track `yaml:"tracks"`
}

// LoadFile reads a tracklist in YAML form:
//
//	split: 3
//	tracks:
//	  - id: wafimb
//	    title: What a Feeling it Must Be
//	    duration: "3:09"
//	    src: What a Feeling it Must Be.wav
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f.Tracks, f.Split)
}
