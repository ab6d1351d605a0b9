package provider

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"trustlens/pkg/insight"
)

const mmdbName = "mmdb"

// MMDB is an optional offline source backed by a local MaxMind City
// database. It sits last in the chain: consulted only when both HTTP
// providers failed, so a stale database never shadows live data.
type MMDB struct {
	db *geoip2.Reader
}

func NewMMDB(path string) (*MMDB, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mmdb: %w", err)
	}
	return &MMDB{db: db}, nil
}

func (c *MMDB) Name() string { return mmdbName }

func (c *MMDB) Configured() bool { return c != nil && c.db != nil }

func (c *MMDB) Fetch(_ context.Context, ip string) (insight.Insight, error) {
	if !c.Configured() {
		return insight.Insight{}, ErrNotConfigured
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return insight.Insight{}, rejected(mmdbName, "unparseable ip %q", ip)
	}
	record, err := c.db.City(parsed)
	if err != nil {
		return insight.Insight{}, classify(mmdbName, err)
	}
	out := insight.Insight{
		IP:       ip,
		Country:  record.Country.IsoCode,
		City:     record.City.Names["en"],
		Timezone: record.Location.TimeZone,
	}
	if len(record.Subdivisions) > 0 {
		out.Region = record.Subdivisions[0].Names["en"]
	}
	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		out.Loc = fmt.Sprintf("%.4f,%.4f", record.Location.Latitude, record.Location.Longitude)
	}
	if out.IsZero() {
		return insight.Insight{}, rejected(mmdbName, "no record for %s", ip)
	}
	return out, nil
}

// VerifyToken has no credential to probe; a readable database counts as
// healthy.
func (c *MMDB) VerifyToken(context.Context) bool { return c.Configured() }

func (c *MMDB) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

var _ Source = (*MMDB)(nil)
