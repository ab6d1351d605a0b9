package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"trustlens/internal/logger"
	"trustlens/internal/metrics"
	"trustlens/internal/observability"
	"trustlens/pkg/insight"
	"trustlens/pkg/lookup"
	"trustlens/pkg/provider"
	"trustlens/pkg/report"

	"github.com/gin-gonic/gin"
)

// InsightLookup is the lookup operation the handlers depend on; tests swap
// in fakes.
type InsightLookup interface {
	LookupIP(ctx context.Context, ip string) (insight.Insight, error)
}

type Handlers struct {
	Lookup       InsightLookup
	Warmer       *lookup.Warmer
	Primary      provider.Source
	Secondary    provider.Source
	CacheBackend string
	Metrics      *metrics.Metrics
	Traces       *observability.Store
	Alerts       *observability.AlertStore
	Log          *logger.Logger
	// VerifyTimeout bounds the health endpoint's token probe.
	VerifyTimeout time.Duration
}

func (h *Handlers) verifyTimeout() time.Duration {
	if h.VerifyTimeout > 0 {
		return h.VerifyTimeout
	}
	return 2 * time.Second
}

func (h *Handlers) GetHealth(c *gin.Context) {
	ipinfoConfigured := h.Primary != nil && h.Primary.Configured()

	radarHealthy := false
	if h.Secondary != nil && h.Secondary.Configured() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.verifyTimeout())
		defer cancel()
		radarHealthy = h.Secondary.VerifyToken(ctx)
	}

	warming := false
	var warmed int64
	if h.Warmer != nil {
		warming = h.Warmer.InProgress()
		warmed = h.Warmer.WarmedCount()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"ipinfoConfigured": ipinfoConfigured,
		"radarHealthy":     radarHealthy,
		"cache": gin.H{
			"backend":           h.CacheBackend,
			"warmingInProgress": warming,
			"warmedCount":       warmed,
		},
	})
}

func (h *Handlers) LookupIP(c *gin.Context) {
	ip := c.Param("ip")
	if net.ParseIP(ip) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ip"})
		return
	}
	ins, err := h.Lookup.LookupIP(c.Request.Context(), ip)
	if err != nil {
		if errors.Is(err, lookup.ErrUpstreamUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "upstream providers unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, ins)
}

func (h *Handlers) CreateReport(c *gin.Context) {
	var fp report.Fingerprint
	if err := c.BindJSON(&fp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fingerprint payload"})
		return
	}

	ip := c.ClientIP()
	ins, err := h.Lookup.LookupIP(c.Request.Context(), ip)
	if err != nil {
		// The insight is one input among several; a report without it is
		// still more useful than a 502.
		if h.Log != nil {
			h.Log.Warn("report without ip insight", map[string]any{"ip": ip, "err": err.Error()})
		}
		ins = insight.Insight{IP: ip}
	}

	c.JSON(http.StatusOK, report.Build(fp, ins))
}

func (h *Handlers) GetTraces(c *gin.Context) {
	if h.Traces == nil {
		c.JSON(http.StatusOK, []observability.Trace{})
		return
	}
	c.JSON(http.StatusOK, h.Traces.List())
}

func (h *Handlers) GetAlerts(c *gin.Context) {
	if h.Alerts == nil {
		c.JSON(http.StatusOK, []observability.Alert{})
		return
	}
	c.JSON(http.StatusOK, h.Alerts.List())
}
