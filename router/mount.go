package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Mount attaches a Handler under a path prefix on a chi router, wrapped in
// the given middleware. The prefix is stripped before route resolution so
// the route tree stays mount-point agnostic.
func Mount(mux chi.Router, prefix string, h *Handler, mws ...Middleware) {
	prefix = "/" + strings.Trim(prefix, "/")
	wrapped := Chain(h, mws...)
	if prefix == "/" {
		mux.Mount("/", wrapped)
		return
	}
	mux.Mount(prefix, http.StripPrefix(prefix, wrapped))
}
