package web

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mimusdev/mimus/domain"
	"github.com/mimusdev/mimus/status"
)

// apiContext carries everything a handler may touch for one request:
// parsed parameters, the negotiated format tag, and the resolved acting
// identity. Nothing request-scoped lives anywhere else.
type apiContext struct {
	gin    *gin.Context
	env    *Env
	path   string // endpoint path, format suffix and version alias stripped
	format string

	// acting identity, set by the auth gate
	credential *domain.Credential
	actor      *domain.Actor
}

// Param reads a request parameter from the query string or, for form
// posts, the request body.
func (c *apiContext) Param(name string) string {
	if v, ok := c.gin.GetQuery(name); ok {
		return v
	}
	return c.gin.PostForm(name)
}

func (c *apiContext) IntParam(name string, fallback int) int {
	v := c.Param(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (c *apiContext) Int64Param(name string, fallback int64) int64 {
	v := c.Param(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (c *apiContext) BoolParam(name string) bool {
	v := c.Param(name)
	return v == "true" || v == "1" || v == "t"
}

// Window builds the pagination window from the common listing parameters.
func (c *apiContext) Window() domain.Window {
	return status.ParseWindow(
		c.IntParam("count", status.DefaultCount),
		c.IntParam("page", 0),
		c.Int64Param("since_id", 0),
		c.Int64Param("max_id", 0),
	)
}

// IncludeEntities reports whether the client opted into entity output.
func (c *apiContext) IncludeEntities() bool {
	return c.BoolParam("include_entities")
}

// RequestLine is the original path plus query string, echoed back inside
// the error envelope.
func (c *apiContext) RequestLine() string {
	line := c.gin.Request.URL.Path
	if q := c.gin.Request.URL.RawQuery; q != "" {
		line += "?" + q
	}
	return line
}
