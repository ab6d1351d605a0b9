// Package report assembles a trust report from a submitted browser
// fingerprint and the caller's resolved IP insight. The per-category scores
// are deliberately coarse presence/consistency checks; tuning them is a
// product concern, not this package's.
package report

import (
	"strings"
	"time"

	"trustlens/pkg/insight"
)

// Fingerprint is the collected browser signal payload. All probing happens
// client-side; this is just the submitted result.
type Fingerprint struct {
	UserAgent   string   `json:"user_agent"`
	Platform    string   `json:"platform,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
	Screen      *Screen  `json:"screen,omitempty"`
	CanvasHash  string   `json:"canvas_hash,omitempty"`
	WebGLHash   string   `json:"webgl_hash,omitempty"`
	AudioHash   string   `json:"audio_hash,omitempty"`
	TouchPoints int      `json:"touch_points,omitempty"`
}

type Screen struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	ColorDepth int `json:"color_depth"`
}

type Category struct {
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	Signals []string `json:"signals,omitempty"`
}

type Report struct {
	IP          insight.Insight `json:"ip"`
	Categories  []Category      `json:"categories"`
	Verdict     string          `json:"verdict"`
	GeneratedAt time.Time       `json:"generated_at"`
}

const (
	VerdictTrusted    = "trusted"
	VerdictSuspicious = "suspicious"
	VerdictUntrusted  = "untrusted"
)

// orgHints flag orgs that usually mean the traffic is not a residential
// browser.
var orgHints = []string{"hosting", "datacenter", "cloud", "vpn", "proxy"}

// Build scores the fingerprint against the insight and renders a verdict.
func Build(fp Fingerprint, ins insight.Insight) Report {
	categories := []Category{
		scoreEnvironment(fp),
		scoreHardware(fp),
		scoreNetwork(fp, ins),
	}

	total := 0
	for _, c := range categories {
		total += c.Score
	}
	avg := total / len(categories)

	verdict := VerdictTrusted
	switch {
	case avg < 40:
		verdict = VerdictUntrusted
	case avg < 70:
		verdict = VerdictSuspicious
	}

	return Report{
		IP:          ins,
		Categories:  categories,
		Verdict:     verdict,
		GeneratedAt: time.Now().UTC(),
	}
}

func scoreEnvironment(fp Fingerprint) Category {
	c := Category{Name: "environment", Score: 100}
	if fp.UserAgent == "" {
		c.penalize(50, "missing user agent")
	}
	if len(fp.Languages) == 0 {
		c.penalize(20, "no languages reported")
	}
	if fp.Timezone == "" {
		c.penalize(15, "no timezone reported")
	}
	return c
}

func scoreHardware(fp Fingerprint) Category {
	c := Category{Name: "hardware", Score: 100}
	if fp.Screen == nil {
		c.penalize(25, "no screen metrics")
	} else if fp.Screen.Width <= 0 || fp.Screen.Height <= 0 {
		c.penalize(30, "implausible screen dimensions")
	}
	if fp.CanvasHash == "" && fp.WebGLHash == "" && fp.AudioHash == "" {
		c.penalize(40, "no rendering entropy submitted")
	}
	return c
}

func scoreNetwork(fp Fingerprint, ins insight.Insight) Category {
	c := Category{Name: "network", Score: 100}
	if ins.IsZero() {
		c.penalize(30, "ip unresolved")
		return c
	}
	if fp.Timezone != "" && ins.Timezone != "" && fp.Timezone != ins.Timezone {
		c.penalize(25, "browser timezone does not match ip timezone")
	}
	org := strings.ToLower(ins.Org)
	for _, hint := range orgHints {
		if strings.Contains(org, hint) {
			c.penalize(35, "ip org suggests non-residential network")
			break
		}
	}
	return c
}

func (c *Category) penalize(points int, signal string) {
	c.Score -= points
	if c.Score < 0 {
		c.Score = 0
	}
	c.Signals = append(c.Signals, signal)
}
