package stack

import "fmt"

// ConfigError reports a stack or include document that could not be loaded:
// the file is missing or its content is not a mapping. Fatal; the pipeline
// produces no envelope after one.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config document %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// RoutingMismatchError reports an explicitly referenced stack whose routing
// metadata disagrees with the requested persona/role.
type RoutingMismatchError struct {
	Persona string
	Role    string
	Routing Routing
}

func (e *RoutingMismatchError) Error() string {
	return fmt.Sprintf(
		"stack routing mismatch: expected persona=%s, role=%s, got persona=%s, role=%s",
		e.Persona, e.Role, e.Routing.Persona, e.Routing.Role,
	)
}

// NoMatchingStackError reports a discovery scan that found zero stacks
// routed to the requested persona/role.
type NoMatchingStackError struct {
	Persona string
	Role    string
	Dir     string
}

func (e *NoMatchingStackError) Error() string {
	return fmt.Sprintf("no stack matches persona=%s role=%s in %s", e.Persona, e.Role, e.Dir)
}
