package contract

import "sync"

// EnvType identifies the execution context a dispatch runs in.
type EnvType int

const (
	EnvPublic EnvType = iota
	EnvPrivileged
	EnvCLI
)

// Environment is the runtime environment handed to handlers as an ambient
// parameter. It carries per-call result attributes and the authenticated
// user; it is never drawn from the value bag.
type Environment interface {
	EnvType() EnvType
	SetResultAttrib(name string, value any)
	ResultAttrib(name string) (any, bool)
	SetAuthUser(user string)
	AuthUser() string
}

// MemEnvironment is an in-memory Environment implementation.
type MemEnvironment struct {
	Type EnvType

	mu      sync.Mutex
	attribs map[string]any
	user    string
}

// EnvType returns the execution context type.
func (e *MemEnvironment) EnvType() EnvType { return e.Type }

// SetResultAttrib stores a named result attribute.
func (e *MemEnvironment) SetResultAttrib(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attribs == nil {
		e.attribs = make(map[string]any)
	}
	e.attribs[name] = value
}

// ResultAttrib returns a named result attribute.
func (e *MemEnvironment) ResultAttrib(name string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.attribs[name]
	return v, ok
}

// SetAuthUser records the authenticated user.
func (e *MemEnvironment) SetAuthUser(user string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.user = user
}

// AuthUser returns the authenticated user, if any.
func (e *MemEnvironment) AuthUser() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.user
}
