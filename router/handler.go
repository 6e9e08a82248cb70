package router

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bjaus/contract"
)

// Handler adapts a route tree to http.Handler. Each request is resolved to
// a compiled method; path, query, and body parameters are merged into one
// value bag and handed to the method's dispatch routine.
type Handler struct {
	root    *Route
	env     contract.EnvType
	aliases map[string]string
	logger  *slog.Logger
	maxBody int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithEnvType sets the execution context type the handler runs methods in.
// Protected methods require EnvPrivileged.
func WithEnvType(t contract.EnvType) Option {
	return func(h *Handler) { h.env = t }
}

// WithAlias rewrites the first path component before route resolution, so
// one subtree can be reachable under several names.
func WithAlias(from, to string) Option {
	return func(h *Handler) {
		if h.aliases == nil {
			h.aliases = make(map[string]string)
		}
		h.aliases[from] = to
	}
}

// WithLogger sets the handler's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithMaxBodyBytes caps the request body size. The default is 1 MiB.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) { h.maxBody = n }
}

// NewHandler creates an HTTP adapter over a route tree.
func NewHandler(root *Route, opts ...Option) *Handler {
	h := &Handler{
		root:    root,
		logger:  slog.Default(),
		maxBody: 1 << 20,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FindAlias resolves a first path component through the alias table.
func (h *Handler) FindAlias(component string) (string, bool) {
	to, ok := h.aliases[component]
	return to, ok
}

// ServeHTTP resolves and dispatches one request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := h.resolveAlias(r.URL.Path)

	params := contract.Value{}
	method, err := h.root.FindMethod(path, r.Method, params)
	if err != nil {
		h.writeProblem(w, r, err)
		return
	}

	if method.Protected() && h.env != contract.EnvPrivileged {
		h.writeProblem(w, r, &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(http.StatusForbidden),
			Status: http.StatusForbidden,
			Detail: "method requires a privileged environment",
		})
		return
	}

	bag, err := h.requestBag(r, method, params)
	if err != nil {
		h.writeProblem(w, r, err)
		return
	}

	body, err := json.Marshal(bag)
	if err != nil {
		h.writeProblem(w, r, err)
		return
	}

	env := &contract.MemEnvironment{Type: h.env}
	if user := GetAuthUser(r); user != "" {
		env.SetAuthUser(user)
	}

	result, err := method.Call(body, env)
	if err != nil {
		h.writeProblem(w, r, err)
		return
	}

	h.writeResult(w, result, env)
}

// requestBag merges the three parameter sources into one bag. Body members
// come first, query parameters may not shadow them, and captured path
// components always win.
func (h *Handler) requestBag(r *http.Request, method *contract.Method, params contract.Value) (contract.Value, error) {
	bag, err := h.bodyBag(r)
	if err != nil {
		return nil, err
	}

	input := method.Input()
	for name, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		if _, dup := bag[name]; dup {
			return nil, &contract.FieldError{Field: name, Msg: "parameter given in both body and query"}
		}
		raw, err := coerceQuery(input, name, values[0])
		if err != nil {
			return nil, err
		}
		bag[name] = raw
	}

	for name, raw := range params {
		bag[name] = raw
	}
	return bag, nil
}

// bodyBag decodes the request body into a bag. An empty body is an empty
// bag; a non-object body is rejected.
func (h *Handler) bodyBag(r *http.Request) (contract.Value, error) {
	if r.Body == nil {
		return contract.Value{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return contract.Value{}, nil
	}
	var bag contract.Value
	if err := json.Unmarshal(data, &bag); err != nil {
		return nil, &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(http.StatusBadRequest),
			Status: http.StatusBadRequest,
			Detail: "request body must be a JSON object",
		}
	}
	// A literal null body decodes to a nil map; query and path
	// parameters still need somewhere to go.
	if bag == nil {
		bag = contract.Value{}
	}
	return bag, nil
}

// coerceQuery converts a textual query parameter to the generic
// representation guided by the input schema. Parameters without a schema
// property stay strings; the dispatch routine decides their fate.
func coerceQuery(input *contract.Schema, name, text string) (json.RawMessage, error) {
	prop, ok := input.Property(name)
	if !ok {
		return json.Marshal(text)
	}
	switch prop.Schema.Kind() {
	case contract.KindBoolean:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, &contract.FieldError{Field: name, Msg: "not a boolean"}
		}
		return json.Marshal(v)
	case contract.KindInteger:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, &contract.FieldError{Field: name, Msg: "not an integer"}
		}
		return json.Marshal(n)
	default:
		return json.Marshal(text)
	}
}

// resultEnvelope is the wire form of a successful dispatch: the handler
// result under "data", plus any result attributes the handler set on its
// environment.
type resultEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Attribs map[string]any  `json:"attribs,omitempty"`
}

func (h *Handler) writeResult(w http.ResponseWriter, result json.RawMessage, env *contract.MemEnvironment) {
	envelope := resultEnvelope{Data: result}
	if total, ok := env.ResultAttrib("total"); ok {
		envelope.Attribs = map[string]any{"total": total}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(envelope)
}

func (h *Handler) writeProblem(w http.ResponseWriter, r *http.Request, err error) {
	problem := problemFromError(err, r.URL.Path)
	if problem.Status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(problem)
}

func (h *Handler) resolveAlias(path string) string {
	components := splitPath(path)
	if len(components) == 0 {
		return path
	}
	if to, ok := h.aliases[components[0]]; ok {
		components[0] = to
		return "/" + strings.Join(components, "/")
	}
	return path
}
