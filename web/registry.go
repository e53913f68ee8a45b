package web

import (
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HandlerFunc is one API endpoint. It returns the payload to serialize or
// an error; a nil payload without an error counts as an internal fault.
type HandlerFunc func(c *apiContext) (interface{}, error)

// MethodSet is the set of HTTP methods an endpoint admits.
type MethodSet map[string]bool

// AnyMethod admits every HTTP method.
var AnyMethod = MethodSet{"*": true}

func Methods(methods ...string) MethodSet {
	set := make(MethodSet, len(methods))
	for _, m := range methods {
		set[m] = true
	}
	return set
}

func (s MethodSet) Allows(method string) bool {
	return s["*"] || s[method]
}

// Endpoint is one typed entry of the dispatch table.
type Endpoint struct {
	Prefix       string
	Handler      HandlerFunc
	AuthRequired bool
	Methods      MethodSet
	// Root names the XML/feed root element for this endpoint's payload.
	Root string
}

// Registry is the dispatch table, built once at startup and read-only
// afterwards. Registration order is significant: the first registered
// prefix matching the request path wins.
type Registry struct {
	endpoints []Endpoint
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(prefix string, root string, methods MethodSet, authRequired bool, handler HandlerFunc) {
	r.endpoints = append(r.endpoints, Endpoint{
		Prefix:       prefix,
		Handler:      handler,
		AuthRequired: authRequired,
		Methods:      methods,
		Root:         root,
	})
}

// Match finds the first registered endpoint whose prefix matches the path.
func (r *Registry) Match(path string) *Endpoint {
	for i := range r.endpoints {
		if strings.HasPrefix(path, r.endpoints[i].Prefix) {
			return &r.endpoints[i]
		}
	}
	return nil
}

// Dispatch is the top-level request boundary: path normalization, method
// gate, auth gate, handler invocation with timing, and translation of any
// fault into the error envelope. This is the only place faults become wire
// format.
func Dispatch(g *gin.Context, env *Env, registry *Registry) {
	rawPath := strings.TrimPrefix(g.Param("path"), "/")

	// Every endpoint also answers under the versioned alias.
	path := strings.TrimPrefix(rawPath, "1.1/")

	path, format := splitFormat(path)

	c := &apiContext{
		gin:    g,
		env:    env,
		path:   path,
		format: format,
	}

	endpoint := registry.Match(path)

	var result interface{}
	var err error
	root := "response"

	started := time.Now()

	switch {
	case endpoint == nil:
		err = NotImplemented("API endpoint " + path + " not implemented")
	case !endpoint.Methods.Allows(g.Request.Method):
		err = MethodNotAllowed("method " + g.Request.Method + " not allowed on " + path)
	default:
		root = endpoint.Root
		if endpoint.AuthRequired {
			err = Authenticate(c)
		}
		if err == nil {
			result, err = endpoint.Handler(c)
			if err == nil && result == nil {
				// A handler signaling failure without a typed fault is an
				// internal fault.
				err = InternalError("handler for " + path + " returned no result")
			}
		}
	}

	log.Printf("API call %s %s [%s] took %v", g.Request.Method, path, format, time.Since(started))

	if err != nil {
		WriteError(c, asFault(err))
		return
	}

	WriteResult(c, root, result)
}

// splitFormat derives the serialization from the path suffix. JSON is the
// default when no known suffix is present.
func splitFormat(path string) (string, string) {
	for _, format := range []string{"json", "xml", "rss", "atom"} {
		suffix := "." + format
		if strings.HasSuffix(path, suffix) {
			return strings.TrimSuffix(path, suffix), format
		}
	}
	return path, "json"
}
