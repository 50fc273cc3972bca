package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceSpec describes one mailing-list feed: which digests belong to it
// and how to extract them.
type SourceSpec struct {
	// Name identifies the feed in logs and summaries.
	Name string `yaml:"name"`
	// SubjectFilter is a substring the digest subject must contain.
	SubjectFilter string `yaml:"subject_filter"`
	// Variant selects the extractor: "structured" or "free-text".
	// Compilation digests are detected per message and override this.
	Variant string `yaml:"variant"`
	// Output is the JSON file name, written under the output directory.
	Output string `yaml:"output"`
}

type sourcesFile struct {
	Sources []SourceSpec `yaml:"sources"`
}

// DefaultSources covers the two Grand Châtaignier feeds.
func DefaultSources() []SourceSpec {
	return []SourceSpec{
		{
			Name:          "sorties",
			SubjectFilter: "crieur-des-sorties",
			Variant:       "structured",
			Output:        "annonces.json",
		},
		{
			Name:          "libre",
			SubjectFilter: "crieur-libre-expression",
			Variant:       "free-text",
			Output:        "expression_libre.json",
		},
	}
}

// LoadSources reads the YAML source definitions. A missing file falls back
// to the defaults; a malformed one is an error.
func LoadSources(path string) ([]SourceSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSources(), nil
		}
		return nil, err
	}
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("sources: parse %s: %w", path, err)
	}
	if len(f.Sources) == 0 {
		return DefaultSources(), nil
	}
	for i, s := range f.Sources {
		if s.Name == "" || s.SubjectFilter == "" || s.Output == "" {
			return nil, fmt.Errorf("sources: entry %d missing name, subject_filter or output", i)
		}
	}
	return f.Sources, nil
}
