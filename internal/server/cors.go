package server

import (
	"net/http"
	"strings"
)

// Based on the gorilla/handlers CORS middleware, restricted to an
// OriginValidator instead of a static allow-list: the command surface is
// only ever meant to be called by the pad's own local GUI, never a remote
// origin.

// OriginValidator reports whether an Origin header value may call the API.
type OriginValidator func(string) bool

type cors struct {
	h         http.Handler
	validator OriginValidator
}

var (
	allowedHeaders = []string{"Accept", "Accept-Language", "Content-Language", "Origin", "Content-Type"}
	allowedMethods = []string{"GET", "POST", "OPTIONS"}
)

const (
	corsOptionMethod         = "OPTIONS"
	corsAllowOriginHeader    = "Access-Control-Allow-Origin"
	corsRequestMethodHeader  = "Access-Control-Request-Method"
	corsRequestHeadersHeader = "Access-Control-Request-Headers"
	corsOriginHeader         = "Origin"
)

func (c *cors) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get(corsOriginHeader)

	// Requests without an Origin header are same-origin or a non-browser
	// client (curl, the GUI's own backend); nothing to restrict.
	if origin != "" && !c.validator(origin) {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if r.Method == corsOptionMethod {
		if _, ok := r.Header[corsRequestMethodHeader]; !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		method := r.Header.Get(corsRequestMethodHeader)
		if !isMatch(method, allowedMethods) {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		for _, v := range strings.Split(r.Header.Get(corsRequestHeadersHeader), ",") {
			canonical := http.CanonicalHeaderKey(strings.TrimSpace(v))
			if v != "" && !isMatch(canonical, allowedHeaders) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
		}
	}

	if origin != "" {
		w.Header().Set(corsAllowOriginHeader, origin)
	}
	if r.Method == corsOptionMethod {
		return
	}
	c.h.ServeHTTP(w, r)
}

// CORS wraps a handler with origin validation driven by v.
func CORS(v OriginValidator) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return &cors{h: h, validator: v}
	}
}

func isMatch(needle string, haystack []string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

// localhostValidator allows only http(s) origins naming localhost or
// 127.0.0.1 at any port, plus the tauri://localhost and
// http://tauri.localhost webview origins: the GUI serves itself from the
// same machine as redragond.
func localhostValidator() OriginValidator {
	return func(origin string) bool {
		for _, prefix := range []string{
			"http://localhost:", "https://localhost:",
			"http://127.0.0.1:", "https://127.0.0.1:",
			"tauri://localhost", "http://tauri.localhost",
		} {
			if strings.HasPrefix(origin, prefix) {
				return true
			}
		}
		return false
	}
}
