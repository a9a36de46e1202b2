// Package policy loads the policy catalog and the environment description.
// Both documents are optional: an absent file degrades to an empty
// collection rather than failing the run. The catalog preserves document
// order, which downstream policy_bundle and policy_refs rendering depend on.
package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one policy in the catalog. Fields holds the full mapping as
// authored; Summary is the conventional "summary" field, if any.
type Entry struct {
	Summary string
	Fields  map[string]any
}

// Catalog is an ordered, immutable view of the policy catalog. The zero
// value is an empty catalog.
type Catalog struct {
	keys    []string
	entries map[string]Entry
}

// LoadCatalog reads the policies document. A missing file yields an empty
// catalog; a present document that is not a mapping is an error.
func LoadCatalog(path string) (Catalog, error) {
	node, err := loadMapping(path)
	if err != nil || node == nil {
		return Catalog{}, err
	}

	policies := childMapping(node, "policies")
	if policies == nil {
		return Catalog{}, nil
	}

	cat := Catalog{entries: make(map[string]Entry)}
	for i := 0; i+1 < len(policies.Content); i += 2 {
		key := policies.Content[i].Value
		var fields map[string]any
		if err := policies.Content[i+1].Decode(&fields); err != nil {
			return Catalog{}, fmt.Errorf("policy %q: %w", key, err)
		}
		summary, _ := fields["summary"].(string)
		if _, seen := cat.entries[key]; !seen {
			cat.keys = append(cat.keys, key)
		}
		cat.entries[key] = Entry{Summary: summary, Fields: fields}
	}
	return cat, nil
}

// Keys returns the policy keys in document order. The slice is a copy.
func (c Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of policies.
func (c Catalog) Len() int { return len(c.keys) }

// Summary returns the policy's summary, defaulting to the key itself when
// the entry has no usable summary field.
func (c Catalog) Summary(key string) string {
	entry, ok := c.entries[key]
	if !ok || entry.Summary == "" {
		return key
	}
	return entry.Summary
}

// Entry returns the full policy entry and whether it exists.
func (c Catalog) Entry(key string) (Entry, bool) {
	entry, ok := c.entries[key]
	return entry, ok
}

// Environment is the free-form host/deployment description attached to
// every run envelope.
type Environment map[string]any

// LoadEnvironment reads the environment document. A missing file yields an
// empty environment.
func LoadEnvironment(path string) (Environment, error) {
	node, err := loadMapping(path)
	if err != nil || node == nil {
		return Environment{}, err
	}
	env := childMapping(node, "environment")
	if env == nil {
		return Environment{}, nil
	}
	var out Environment
	if err := env.Decode(&out); err != nil {
		return Environment{}, fmt.Errorf("environment document %s: %w", path, err)
	}
	return out, nil
}

// loadMapping parses a YAML file down to its root mapping node. Missing
// files and empty documents return (nil, nil).
func loadMapping(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document %s must be a mapping", path)
	}
	return doc, nil
}

// childMapping returns the mapping node stored under key, or nil.
func childMapping(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key && mapping.Content[i+1].Kind == yaml.MappingNode {
			return mapping.Content[i+1]
		}
	}
	return nil
}
