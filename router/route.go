// Package router dispatches HTTP requests to compiled contract methods. It
// resolves a path through a route tree, merges path, query, and body
// parameters into one value bag, and hands the bag to the method's
// generated dispatch routine.
package router

import (
	"fmt"
	"strings"

	"github.com/bjaus/contract"
)

// Route is one node of the route tree: up to one compiled method per HTTP
// verb, plus either fixed subdirectories or a single wildcard segment that
// captures its path component as a named parameter.
type Route struct {
	get    *contract.Method
	put    *contract.Method
	post   *contract.Method
	delete *contract.Method

	subdirs   map[string]*Route
	wildName  string
	wildRoute *Route
}

// New creates an empty route tree root.
func New() *Route {
	return &Route{}
}

// At walks (and creates) the subtree at path. Segments wrapped in braces,
// like "{name}", become wildcard segments capturing the component under
// that name. A node has either fixed subdirectories or a wildcard, never
// both.
func (r *Route) At(path string) *Route {
	node := r
	for _, seg := range splitPath(path) {
		if name, ok := wildcardName(seg); ok {
			if node.subdirs != nil {
				panic(fmt.Sprintf("route %q: wildcard beside fixed subdirectories", path))
			}
			if node.wildRoute == nil {
				node.wildName = name
				node.wildRoute = &Route{}
			} else if node.wildName != name {
				panic(fmt.Sprintf("route %q: conflicting wildcard names %q and %q", path, node.wildName, name))
			}
			node = node.wildRoute
			continue
		}
		if node.wildRoute != nil {
			panic(fmt.Sprintf("route %q: fixed subdirectory beside a wildcard", path))
		}
		if node.subdirs == nil {
			node.subdirs = make(map[string]*Route)
		}
		child, ok := node.subdirs[seg]
		if !ok {
			child = &Route{}
			node.subdirs[seg] = child
		}
		node = child
	}
	return node
}

// Get registers the GET method on this node.
func (r *Route) Get(m *contract.Method) *Route { r.get = m; return r }

// Put registers the PUT method on this node.
func (r *Route) Put(m *contract.Method) *Route { r.put = m; return r }

// Post registers the POST method on this node.
func (r *Route) Post(m *contract.Method) *Route { r.post = m; return r }

// Delete registers the DELETE method on this node.
func (r *Route) Delete(m *contract.Method) *Route { r.delete = m; return r }

// find resolves path components to a node, capturing wildcard components
// into params.
func (r *Route) find(components []string, params contract.Value) (*Route, bool) {
	node := r
	for _, c := range components {
		switch {
		case node.subdirs != nil:
			child, ok := node.subdirs[c]
			if !ok {
				return nil, false
			}
			node = child
		case node.wildRoute != nil:
			if params != nil {
				if err := params.Set(node.wildName, c); err != nil {
					return nil, false
				}
			}
			node = node.wildRoute
		default:
			return nil, false
		}
	}
	return node, true
}

// method returns the compiled method for a verb, if registered.
func (r *Route) method(verb string) (*contract.Method, bool) {
	switch verb {
	case "GET":
		return r.get, r.get != nil
	case "PUT":
		return r.put, r.put != nil
	case "POST":
		return r.post, r.post != nil
	case "DELETE":
		return r.delete, r.delete != nil
	}
	return nil, false
}

// FindMethod resolves a path and verb to a compiled method, capturing
// wildcard path components into params. It distinguishes an unknown path
// from a known path without the verb.
func (r *Route) FindMethod(path, verb string, params contract.Value) (*contract.Method, error) {
	node, ok := r.find(splitPath(path), params)
	if !ok {
		return nil, &NotFoundError{Path: path}
	}
	m, ok := node.method(verb)
	if !ok {
		return nil, &MethodNotAllowedError{Path: path, Verb: verb}
	}
	return m, nil
}

func splitPath(path string) []string {
	var components []string
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			components = append(components, c)
		}
	}
	return components
}

func wildcardName(segment string) (string, bool) {
	if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
		return segment[1 : len(segment)-1], true
	}
	return "", false
}
