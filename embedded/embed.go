// Package embedded provides the workspace scaffold documents embedded in
// the cx binary: an example stack, the shared invariants include, and the
// default policy, environment, and rubric documents.
package embedded

import "embed"

// TemplatesFS contains the scaffold documents extracted by cx init.
// Paths inside the FS mirror the workspace layout (stacks/, config/).
//
//go:embed all:templates
var TemplatesFS embed.FS

// TemplatesRoot is the prefix under which scaffold documents live.
const TemplatesRoot = "templates"
