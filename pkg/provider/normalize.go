package provider

import "trustlens/pkg/insight"

// IPInfoPayload is the raw response shape of the primary geo/ASN provider.
type IPInfoPayload struct {
	IP       string `json:"ip"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Timezone string `json:"timezone"`
	Bogon    bool   `json:"bogon"`
}

// RadarPayload is the raw per-IP entity shape of the secondary provider's
// success envelope.
type RadarPayload struct {
	IP         string `json:"ip"`
	Location   string `json:"location"`
	ASN        int64  `json:"asn"`
	ASNName    string `json:"asnName"`
	ASNOrgName string `json:"asnOrgName"`
}

// NormalizeIPInfo maps a primary-provider payload into the canonical
// insight. Absent source fields stay absent; nothing is defaulted.
func NormalizeIPInfo(p IPInfoPayload) insight.Insight {
	return insight.Insight{
		IP:       p.IP,
		Country:  p.Country,
		Region:   p.Region,
		City:     p.City,
		Timezone: p.Timezone,
		Org:      p.Org,
		Loc:      p.Loc,
	}
}

// NormalizeRadar maps a secondary-provider payload into the canonical
// insight. The radar shape carries only a country code and ASN naming, so
// region, city, timezone and loc stay absent.
func NormalizeRadar(ip string, p RadarPayload) insight.Insight {
	out := insight.Insight{
		IP:      ip,
		Country: p.Location,
		Org:     p.ASNOrgName,
	}
	if out.Org == "" {
		out.Org = p.ASNName
	}
	if p.IP != "" {
		out.IP = p.IP
	}
	return out
}
