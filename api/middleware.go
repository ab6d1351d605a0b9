package api

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"trustlens/internal/config"
	"trustlens/internal/logger"
	"trustlens/internal/observability"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware enforces the configured API tokens on everything except
// the health endpoint. Tokens arrive via X-API-Key or a bearer header.
func AuthMiddleware(cfg config.SecurityConfig, log *logger.Logger) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, token := range cfg.Tokens {
		value := config.ResolveSecret(token.Value)
		if value == "" {
			continue
		}
		allowed[value] = struct{}{}
	}
	return func(c *gin.Context) {
		if !cfg.Enabled || c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}
		if len(allowed) == 0 {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "auth not configured"})
			return
		}
		token := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if token == "" {
			auth := c.GetHeader("Authorization")
			if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
				token = strings.TrimSpace(auth[7:])
			}
		}
		if _, ok := allowed[token]; !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if log != nil {
			log.Debug("auth ok", map[string]any{"path": c.FullPath()})
		}
		c.Next()
	}
}

// AuditMiddleware logs every state-changing request after it completes.
func AuditMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if log == nil || c.Request.Method == http.MethodGet {
			return
		}
		log.Info("audit", map[string]any{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"ip":     c.ClientIP(),
		})
	}
}

// TraceMiddleware records each request into the trace ring and propagates
// an X-Trace-Id header.
func TraceMiddleware(store *observability.Store) gin.HandlerFunc {
	if store == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return func(c *gin.Context) {
		start := time.Now()
		traceID := strings.TrimSpace(c.GetHeader("X-Trace-Id"))
		if traceID == "" {
			traceID = generateTraceID()
		}
		c.Set("trace_id", traceID)
		c.Header("X-Trace-Id", traceID)
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		store.Add(observability.Trace{
			ID:         traceID,
			Method:     c.Request.Method,
			Path:       path,
			Status:     c.Writer.Status(),
			DurationMs: time.Since(start).Milliseconds(),
			Timestamp:  time.Now().Unix(),
			ClientIP:   c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})
	}
}

type brotliWriter struct {
	gin.ResponseWriter
	bw *brotli.Writer
}

func (w *brotliWriter) Write(b []byte) (int, error) { return w.bw.Write(b) }

func (w *brotliWriter) WriteString(s string) (int, error) { return w.bw.Write([]byte(s)) }

// CompressionMiddleware brotli-encodes responses for clients that accept it.
func CompressionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "br") {
			c.Next()
			return
		}
		bw := brotli.NewWriterLevel(c.Writer, brotli.DefaultCompression)
		c.Header("Content-Encoding", "br")
		c.Header("Vary", "Accept-Encoding")
		c.Writer = &brotliWriter{ResponseWriter: c.Writer, bw: bw}
		defer func() {
			_ = bw.Close()
		}()
		c.Next()
	}
}

func generateTraceID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format("20060102150405.000000000")))
	}
	return hex.EncodeToString(buf)
}
