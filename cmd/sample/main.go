// Command sample demonstrates the github.com/bjaus/contract compiler with
// a small datastore administration API.
//
// Run:
//
//	go run ./cmd/sample
//
// Then explore:
//
//	GET    http://localhost:8080/api/datastores                — list datastores
//	POST   http://localhost:8080/api/datastores                — create a datastore
//	GET    http://localhost:8080/api/datastores/{name}         — datastore details
//	PUT    http://localhost:8080/api/datastores/{name}         — set maintenance mode
//	DELETE http://localhost:8080/api/datastores/{name}         — remove (protected)
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bjaus/contract"
	"github.com/bjaus/contract/router"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	reg, err := buildRegistry()
	if err != nil {
		slog.Error("registry setup failed", "err", err)
		os.Exit(1)
	}

	store := newStore()
	root, err := buildRoutes(reg, store)
	if err != nil {
		slog.Error("method compilation failed", "err", err)
		os.Exit(1)
	}

	h := router.NewHandler(root,
		router.WithEnvType(contract.EnvPrivileged),
		router.WithAlias("ds", "datastores"),
	)

	mux := chi.NewRouter()
	router.Mount(mux, "/api", h,
		router.Recovery(),
		router.RequestID(),
		router.Logger(slog.Default()),
		router.RateLimit(router.RateLimitConfig{Rate: 50, Burst: 100}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		//nolint:errcheck // best-effort shutdown
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
	}
	slog.Info("server stopped")
}

// buildRegistry registers the shared formats and schemas and publishes the
// registry, freezing it for concurrent use.
func buildRegistry() (*contract.Registry, error) {
	reg := contract.NewRegistry()

	if err := reg.RegisterFormat(contract.Format{
		Name:    "datastore-name",
		Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`),
	}); err != nil {
		return nil, err
	}

	if err := reg.RegisterSchema("datastore-name",
		contract.String("Name of the datastore.").
			WithFormat(contract.Format{Name: "datastore-name", Pattern: regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)}).
			WithMinLength(3).
			WithMaxLength(32),
	); err != nil {
		return nil, err
	}

	reg.Publish()
	return reg, nil
}

// datastore is one managed datastore.
type datastore struct {
	Name        string `json:"name"`
	Comment     string `json:"comment,omitempty"`
	Maintenance string `json:"maintenance,omitempty"`
}

// store is the in-memory datastore table.
type store struct {
	mu    sync.Mutex
	table map[string]*datastore
}

func newStore() *store {
	return &store{table: map[string]*datastore{
		"backup": {Name: "backup", Comment: "Primary backup target."},
	}}
}

func buildRoutes(reg *contract.Registry, s *store) (*router.Route, error) {
	list, err := contract.CompileMethod(contract.MethodSpec{
		Name:        "list-datastores",
		Declaration: []byte(`
input:
  type: Object
  properties: {}
returns:
  type: Array
  items:
    type: Object
    properties:
      name:
        schema: datastore-name
      comment:
        type: String
        description: Datastore comment.
        optional: true
      maintenance:
        type: String
        description: Maintenance mode in property-string form.
        optional: true
`),
		Doc:      "List all datastores.\nReturns: The configured datastores.",
		Handler:  s.list,
		Params:   []string{"env"},
		Registry: reg,
	})
	if err != nil {
		return nil, err
	}

	create, err := contract.CompileMethod(contract.MethodSpec{
		Name:        "create-datastore",
		Declaration: []byte(`
input:
  type: Object
  properties:
    name:
      schema: datastore-name
    comment:
      type: String
      description: Datastore comment.
      optional: true
`),
		Doc:      "Create a new datastore.",
		Handler:  s.create,
		Params:   []string{"name", "comment"},
		Registry: reg,
	})
	if err != nil {
		return nil, err
	}

	get, err := contract.CompileMethod(contract.MethodSpec{
		Name:        "get-datastore",
		Declaration: []byte(`
input:
  type: Object
  properties:
    name:
      schema: datastore-name
returns:
  type: Object
  properties:
    name:
      schema: datastore-name
    comment:
      type: String
      description: Datastore comment.
      optional: true
    maintenance:
      type: String
      description: Maintenance mode in property-string form.
      optional: true
`),
		Doc:      "Read a datastore's configuration.\nReturns: The datastore configuration.",
		Handler:  s.get,
		Params:   []string{"name"},
		Registry: reg,
	})
	if err != nil {
		return nil, err
	}

	maintain, err := contract.CompileMethod(contract.MethodSpec{
		Name:        "set-maintenance",
		Declaration: []byte(`
input:
  type: Object
  properties:
    name:
      schema: datastore-name
    maintenance:
      type: String
      description: Maintenance mode in property-string form.
      optional: true
`),
		Doc:      "Update a datastore's maintenance mode.",
		Handler:  s.maintain,
		Params:   []string{"name", "maintenance"},
		Registry: reg,
	})
	if err != nil {
		return nil, err
	}

	remove, err := contract.CompileMethod(contract.MethodSpec{
		Name:        "delete-datastore",
		Declaration: []byte(`
input:
  type: Object
  properties:
    name:
      schema: datastore-name
protected: true
`),
		Doc:      "Remove a datastore from the configuration.",
		Handler:  s.remove,
		Params:   []string{"name"},
		Registry: reg,
	})
	if err != nil {
		return nil, err
	}

	root := router.New()
	root.At("datastores").Get(list).Post(create)
	root.At("datastores/{name}").Get(get).Put(maintain).Delete(remove)
	return root, nil
}

func (s *store) list(env contract.Environment) ([]*datastore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*datastore, 0, len(s.table))
	for _, ds := range s.table {
		out = append(out, ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	env.SetResultAttrib("total", len(out))
	return out, nil
}

func (s *store) create(name string, comment *string) (struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.table[name]; exists {
		return struct{}{}, fmt.Errorf("datastore %q already exists", name)
	}
	ds := &datastore{Name: name}
	if comment != nil {
		ds.Comment = *comment
	}
	s.table[name] = ds
	return struct{}{}, nil
}

func (s *store) get(name string) (*datastore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.table[name]
	if !ok {
		return nil, fmt.Errorf("no such datastore %q", name)
	}
	return ds, nil
}

func (s *store) maintain(name string, maintenance *string) (struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.table[name]
	if !ok {
		return struct{}{}, fmt.Errorf("no such datastore %q", name)
	}
	if maintenance == nil || *maintenance == "" {
		ds.Maintenance = ""
		return struct{}{}, nil
	}
	if _, err := contract.ParseMaintenanceMode(*maintenance); err != nil {
		return struct{}{}, err
	}
	ds.Maintenance = *maintenance
	return struct{}{}, nil
}

func (s *store) remove(name string) (struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds, ok := s.table[name]; ok && ds.Maintenance != "" {
		if mode, err := contract.ParseMaintenanceMode(ds.Maintenance); err == nil {
			if err := mode.Check(contract.OpWrite); err != nil {
				return struct{}{}, err
			}
		}
	}
	delete(s.table, name)
	return struct{}{}, nil
}
