package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from flowgraph.yml.
type ProjectConfig struct {
	Languages    []string `yaml:"languages,omitempty"`
	ExcludeDirs  []string `yaml:"exclude_dirs,omitempty"`
	UseGitignore bool     `yaml:"use_gitignore,omitempty"`
	Output       string   `yaml:"output,omitempty"`
	GraphDB      string   `yaml:"graph_db,omitempty"`
	Verbose      bool     `yaml:"verbose,omitempty"`
}

// Defaults returns the configuration used when no project file exists.
// Gitignore matching is on unless a config file switches it off.
func Defaults() *ProjectConfig {
	return &ProjectConfig{UseGitignore: true}
}

// Load attempts to read flowgraph.yml or flowgraph.yaml from the given
// directory. Returns the defaults (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"flowgraph.yml", "flowgraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := Defaults()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Defaults(), nil
}
