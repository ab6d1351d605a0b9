package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"trustlens/pkg/insight"
)

const radarName = "radar"

type radarEnvelope struct {
	Success bool `json:"success"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Result struct {
		IP RadarPayload `json:"ip"`
	} `json:"result"`
}

// Radar is the secondary provider client. Its API wraps every response in a
// success envelope; an unsuccessful envelope is a hard failure even on
// HTTP 200.
type Radar struct {
	BaseURL string

	token string
	http  *http.Client
}

func NewRadar(token string, timeout time.Duration) *Radar {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Radar{
		BaseURL: "https://api.cloudflare.com/client/v4",
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Radar) Name() string { return radarName }

func (c *Radar) Configured() bool { return c.token != "" }

func (c *Radar) Fetch(ctx context.Context, ip string) (insight.Insight, error) {
	if !c.Configured() {
		return insight.Insight{}, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/radar/entities/ip?ip="+ip, nil)
	if err != nil {
		return insight.Insight{}, classify(radarName, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return insight.Insight{}, classify(radarName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return insight.Insight{}, rejected(radarName, "HTTP %d: %s", resp.StatusCode, string(body))
	}
	var envelope radarEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return insight.Insight{}, classify(radarName, err)
	}
	if !envelope.Success {
		msg := "unsuccessful response envelope"
		if len(envelope.Errors) > 0 && envelope.Errors[0].Message != "" {
			msg = envelope.Errors[0].Message
		}
		return insight.Insight{}, rejected(radarName, "%s", msg)
	}
	return NormalizeRadar(ip, envelope.Result.IP), nil
}

// VerifyToken checks the token against the verification endpoint. Used for
// health reporting only, never on the lookup path.
func (c *Radar) VerifyToken(ctx context.Context) bool {
	if !c.Configured() {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/user/tokens/verify", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var envelope struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return false
	}
	return envelope.Success
}

var _ Source = (*Radar)(nil)
var _ Source = (*IPInfo)(nil)
