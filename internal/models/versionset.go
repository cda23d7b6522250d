package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Requirement pins one dependency to a version specifier.
type Requirement struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String renders the requirement the way package managers accept it (name@version).
func (r Requirement) String() string {
	return r.Name + "@" + r.Version
}

// VersionSet is one combination of host tool and plugin versions to install
// before a test cycle. Declaration order is preserved.
type VersionSet []Requirement

// Names returns the dependency names in declaration order.
func (vs VersionSet) Names() []string {
	names := make([]string, 0, len(vs))
	for _, r := range vs {
		names = append(names, r.Name)
	}
	return names
}

// Version returns the version specifier for name, if present.
func (vs VersionSet) Version(name string) (string, bool) {
	for _, r := range vs {
		if r.Name == name {
			return r.Version, true
		}
	}
	return "", false
}

func (vs VersionSet) String() string {
	parts := make([]string, 0, len(vs))
	for _, r := range vs {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " ")
}

// Validate checks that every entry names an installable dependency.
func (vs VersionSet) Validate() error {
	if len(vs) == 0 {
		return fmt.Errorf("version set is empty")
	}
	seen := make(map[string]bool, len(vs))
	for i, r := range vs {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("entry %d: empty dependency name", i)
		}
		if strings.ContainsAny(r.Name, " \t\n") || strings.LastIndex(r.Name, "@") > 0 {
			return fmt.Errorf("entry %d: invalid dependency name %q", i, r.Name)
		}
		if strings.TrimSpace(r.Version) == "" {
			return fmt.Errorf("dependency %s: empty version", r.Name)
		}
		if seen[r.Name] {
			return fmt.Errorf("dependency %s listed twice", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// UnmarshalYAML decodes a mapping of name -> version, keeping key order.
func (vs *VersionSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: version set must be a mapping of dependency to version", node.Line)
	}
	out := make(VersionSet, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: version for %s must be a string", val.Line, key.Value)
		}
		out = append(out, Requirement{Name: key.Value, Version: val.Value})
	}
	*vs = out
	return nil
}

// MarshalYAML encodes the set back into an ordered mapping.
func (vs VersionSet) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, r := range vs {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: r.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: r.Version, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}
