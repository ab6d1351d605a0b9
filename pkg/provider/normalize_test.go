package provider

import (
	"testing"

	"trustlens/pkg/insight"
)

func TestNormalizeIPInfoFullPayload(t *testing.T) {
	got := NormalizeIPInfo(IPInfoPayload{
		IP:       "8.8.8.8",
		City:     "Mountain View",
		Region:   "California",
		Country:  "US",
		Loc:      "37.4056,-122.0775",
		Org:      "AS15169 Google LLC",
		Timezone: "America/Los_Angeles",
	})
	want := insight.Insight{
		IP:       "8.8.8.8",
		Country:  "US",
		Region:   "California",
		City:     "Mountain View",
		Timezone: "America/Los_Angeles",
		Org:      "AS15169 Google LLC",
		Loc:      "37.4056,-122.0775",
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeIPInfoAbsentFieldsStayAbsent(t *testing.T) {
	got := NormalizeIPInfo(IPInfoPayload{IP: "127.0.0.1"})
	if !got.IsZero() {
		t.Fatalf("expected absent fields to stay absent, got %+v", got)
	}
	if got.IP != "127.0.0.1" {
		t.Fatalf("ip must always carry through, got %q", got.IP)
	}
}

func TestNormalizeRadar(t *testing.T) {
	got := NormalizeRadar("8.8.8.8", RadarPayload{
		Location:   "US",
		ASN:        15169,
		ASNName:    "GOOGLE",
		ASNOrgName: "Google LLC",
	})
	if got.IP != "8.8.8.8" || got.Country != "US" || got.Org != "Google LLC" {
		t.Fatalf("unexpected normalization: %+v", got)
	}
	if got.Region != "" || got.City != "" || got.Timezone != "" || got.Loc != "" {
		t.Fatalf("radar payloads must not invent fields: %+v", got)
	}
}

func TestNormalizeRadarOrgFallsBackToASNName(t *testing.T) {
	got := NormalizeRadar("1.1.1.1", RadarPayload{Location: "AU", ASNName: "CLOUDFLARENET"})
	if got.Org != "CLOUDFLARENET" {
		t.Fatalf("expected asn name fallback, got %q", got.Org)
	}
}

func TestNormalizeRadarPrefersPayloadIP(t *testing.T) {
	got := NormalizeRadar("8.8.8.8", RadarPayload{IP: "8.8.4.4"})
	if got.IP != "8.8.4.4" {
		t.Fatalf("expected payload ip to win, got %q", got.IP)
	}
}
