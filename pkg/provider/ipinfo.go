package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"trustlens/pkg/insight"
)

const ipinfoName = "ipinfo"

// IPInfo is the primary geo/ASN provider client (ipinfo.io style API).
type IPInfo struct {
	// BaseURL is overridable for tests; the default points at the public API.
	BaseURL string

	token string
	http  *http.Client
}

// NewIPInfo builds the primary client. An empty token leaves the client
// unconfigured rather than broken: Fetch reports ErrNotConfigured.
func NewIPInfo(token string, timeout time.Duration) *IPInfo {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &IPInfo{
		BaseURL: "https://ipinfo.io",
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *IPInfo) Name() string { return ipinfoName }

func (c *IPInfo) Configured() bool { return c.token != "" }

func (c *IPInfo) Fetch(ctx context.Context, ip string) (insight.Insight, error) {
	if !c.Configured() {
		return insight.Insight{}, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/"+ip+"/json?token="+c.token, nil)
	if err != nil {
		return insight.Insight{}, classify(ipinfoName, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return insight.Insight{}, classify(ipinfoName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return insight.Insight{}, rejected(ipinfoName, "HTTP %d: %s", resp.StatusCode, string(body))
	}
	var payload IPInfoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return insight.Insight{}, classify(ipinfoName, err)
	}
	if payload.IP == "" {
		payload.IP = ip
	}
	return NormalizeIPInfo(payload), nil
}

// VerifyToken probes the authenticated /me endpoint. Failures are swallowed.
func (c *IPInfo) VerifyToken(ctx context.Context) bool {
	if !c.Configured() {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/me?token="+c.token, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
