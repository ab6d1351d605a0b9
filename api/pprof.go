package api

import (
	"net/http/pprof"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterPprof exposes the runtime profiling endpoints. Only wired when
// observability.pprof is enabled in config.
func RegisterPprof(router *gin.Engine, basePath string) {
	if basePath == "" {
		basePath = "/debug/pprof"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	group := router.Group(basePath)
	group.GET("/", gin.WrapF(pprof.Index))
	group.GET("/profile", gin.WrapF(pprof.Profile))
	group.GET("/trace", gin.WrapF(pprof.Trace))
	group.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
	group.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	group.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	group.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
}
