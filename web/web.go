// Package web serves the single-page client bundled into the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed dist
var dist embed.FS

// Handler serves files from the bundle and answers every other GET with
// index.html, leaving the URL to the client router. API paths never fall
// back to the shell.
func Handler() gin.HandlerFunc {
	root, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}
	index, err := fs.ReadFile(root, "index.html")
	if err != nil {
		panic(err)
	}
	files := http.FileServer(http.FS(root))

	return func(c *gin.Context) {
		method := c.Request.Method
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || (method != http.MethodGet && method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		name := strings.TrimPrefix(path.Clean(c.Request.URL.Path), "/")
		if name != "" && name != "index.html" {
			if info, err := fs.Stat(root, name); err == nil && !info.IsDir() {
				files.ServeHTTP(c.Writer, c.Request)
				return
			}
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	}
}
