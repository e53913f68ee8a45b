package web

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/mimusdev/mimus/util"
	"golang.org/x/time/rate"
)

const proxyBodyLimit = 10 * 1024 * 1024

// Router starts the API gateway.
func Router(conf *util.AppConfig) error {
	log.Printf("Starting API server on %s:%d", conf.Conf.Host, conf.Conf.HttpPort)
	g := gin.Default()
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	// Global rate limiter: 10 requests per second per IP, burst of 20
	globalLimiter := NewRateLimiter(rate.Limit(10), 20)
	g.Use(RateLimitMiddleware(globalLimiter))
	g.Use(MaxBytesMiddleware(1 * 1024 * 1024))

	env := NewEnv(conf)
	registry := BuildRegistry()

	// The whole compatibility surface hangs off one catch-all; route
	// semantics live in the dispatch table, not in gin patterns.
	g.Any("/api/*path", func(c *gin.Context) {
		Dispatch(c, env, registry)
	})

	if !conf.Conf.NoProxy {
		g.GET("/proxy", proxyImage)
	}

	return g.Run(fmt.Sprintf(":%d", conf.Conf.HttpPort))
}

// proxyImage relays a remote image so that clients on restricted networks
// only ever talk to this host. Anything that is not an image is refused.
func proxyImage(c *gin.Context) {
	remote := c.Query("url")
	if remote == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url parameter"})
		return
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(remote)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream fetch failed"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("upstream returned %d", resp.StatusCode)})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if len(contentType) < 6 || contentType[:6] != "image/" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not an image"})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType,
		io.LimitReader(resp.Body, proxyBodyLimit), nil)
}
