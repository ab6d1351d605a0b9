// Package insight defines the canonical, provider-agnostic IP metadata
// record. Every upstream payload is normalized into this shape before it
// reaches the cache or any consumer; no field here mirrors a specific
// provider's wire format.
package insight

// Insight is the normalized result of an IP intelligence lookup. Optional
// fields stay empty when the resolving provider omitted them.
type Insight struct {
	IP       string `json:"ip"`
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	City     string `json:"city,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Org      string `json:"org,omitempty"`
	// Loc is a combined "lat,lon" string. Splitting it is the consumer's
	// job, not the normalizer's.
	Loc string `json:"loc,omitempty"`
}

// IsZero reports whether no provider contributed any data beyond the IP.
func (i Insight) IsZero() bool {
	return i.Country == "" && i.Region == "" && i.City == "" &&
		i.Timezone == "" && i.Org == "" && i.Loc == ""
}
