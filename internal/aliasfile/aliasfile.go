// Package aliasfile loads extra command aliases from a YAML or TOML file.
//
//	# aliases.yaml
//	aliases:
//	  - alias: say
//	    command: echo
//
//	# aliases.toml
//	[[aliases]]
//	alias = "say"
//	command = "echo"
package aliasfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/keshon/slashbot/pkg/cmd"
	"gopkg.in/yaml.v3"
)

type Entry struct {
	Alias   string `yaml:"alias" toml:"alias"`
	Command string `yaml:"command" toml:"command"`
}

type file struct {
	Aliases []Entry `yaml:"aliases" toml:"aliases"`
}

// Load reads alias entries; the format is chosen by file extension.
func Load(path string) ([]Entry, error) {
	var f file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, &f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported alias file extension %q", ext)
	}
	return f.Aliases, nil
}

// Apply registers every entry. It stops at the first entry the registry
// rejects; entries before it stay registered.
func Apply(reg *cmd.Registry, entries []Entry) error {
	for _, e := range entries {
		if err := reg.Alias(e.Command, e.Alias); err != nil {
			return err
		}
	}
	return nil
}
