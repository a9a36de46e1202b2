// Package stack loads persona stack documents and routes requests to them.
// A stack binds a persona/role pair to a list of agents and a list of shared
// include documents. Stacks are loaded fresh per invocation and never cached;
// resolution composes the declared includes into the stack before routing.
package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Meta identifies a stack and states its purpose.
type Meta struct {
	ID      string `yaml:"id" json:"id"`
	Purpose string `yaml:"purpose" json:"purpose"`
}

// Routing declares which persona/role pair a stack serves.
type Routing struct {
	Persona string `yaml:"persona" json:"persona"`
	Role    string `yaml:"role" json:"role"`
}

// OutputSpec declares how an agent's output is rendered. Only the first
// entry of an agent's outputs list is honored.
type OutputSpec struct {
	Format    string `yaml:"format" json:"format"`
	Normalize *bool  `yaml:"normalize" json:"normalize"`
}

// AgentSpec declares one output-producing unit within a stack.
type AgentSpec struct {
	Name    string       `yaml:"name" json:"name"`
	Outputs []OutputSpec `yaml:"outputs" json:"outputs"`
}

// Document is a parsed stack file. Identity is the file path it was loaded
// from; the document is not mutated after include resolution.
type Document struct {
	Meta    Meta        `yaml:"meta"`
	Routing Routing     `yaml:"routing"`
	Include []string    `yaml:"include"`
	Agents  []AgentSpec `yaml:"agents"`

	// Path is the file the document was loaded from.
	Path string `yaml:"-"`
}

// IncludeDocument is an arbitrary YAML mapping referenced by a stack.
type IncludeDocument map[string]any

// Resolved is a stack with its declared includes composed in. Resolution is
// total: every declared include loaded, or the whole load failed.
type Resolved struct {
	Document

	// Includes maps each declared include name to its parsed document.
	Includes map[string]IncludeDocument
}

// Load reads and parses a single stack document. A missing file or a
// document that is not a mapping yields a *ConfigError.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &ConfigError{Path: path, Err: err}
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, &ConfigError{Path: path, Err: fmt.Errorf("document must be a mapping: %w", err)}
	}
	doc.Path = path
	return doc, nil
}

// loadInclude reads an include file as a free-form mapping.
func loadInclude(path string) (IncludeDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	var doc IncludeDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("document must be a mapping: %w", err)}
	}
	if doc == nil {
		doc = IncludeDocument{}
	}
	return doc, nil
}

// ResolveIncludes loads every include declared by the stack from baseDir.
// Resolution is single level: includes declared by an include document are
// not followed. Include names double as map keys, so renaming a shared
// include file means updating every stack that references it.
func ResolveIncludes(doc Document, baseDir string) (*Resolved, error) {
	resolved := &Resolved{Document: doc}
	if len(doc.Include) == 0 {
		return resolved, nil
	}
	resolved.Includes = make(map[string]IncludeDocument, len(doc.Include))
	for _, name := range doc.Include {
		inc, err := loadInclude(filepath.Join(baseDir, name))
		if err != nil {
			return nil, err
		}
		resolved.Includes[name] = inc
	}
	return resolved, nil
}

// Select picks exactly one resolved stack for the requested persona/role.
//
// With an explicit path the stack is loaded, resolved, and its routing must
// equal the request or selection fails with *RoutingMismatchError. Without
// one, every *.yml/*.yaml file in stacksDir is scanned in sorted path order
// and the first stack whose routing matches wins; zero matches yield
// *NoMatchingStackError.
//
// Nothing enforces routing uniqueness across a stacks directory; with
// duplicate routing declarations the lexical scan order is the tie-break.
func Select(persona, role, stacksDir, explicitPath string) (*Resolved, error) {
	if explicitPath != "" {
		doc, err := Load(explicitPath)
		if err != nil {
			return nil, err
		}
		resolved, err := ResolveIncludes(doc, stacksDir)
		if err != nil {
			return nil, err
		}
		if doc.Routing.Persona != persona || doc.Routing.Role != role {
			return nil, &RoutingMismatchError{Persona: persona, Role: role, Routing: doc.Routing}
		}
		return resolved, nil
	}

	paths, err := candidatePaths(stacksDir)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		doc, err := Load(path)
		if err != nil {
			return nil, err
		}
		resolved, err := ResolveIncludes(doc, stacksDir)
		if err != nil {
			return nil, err
		}
		if doc.Routing.Persona == persona && doc.Routing.Role == role {
			return resolved, nil
		}
	}
	return nil, &NoMatchingStackError{Persona: persona, Role: role, Dir: stacksDir}
}

// candidatePaths lists stack files in stacksDir in sorted order.
func candidatePaths(stacksDir string) ([]string, error) {
	entries, err := os.ReadDir(stacksDir)
	if err != nil {
		return nil, &ConfigError{Path: stacksDir, Err: err}
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		paths = append(paths, filepath.Join(stacksDir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
