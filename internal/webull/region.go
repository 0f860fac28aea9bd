// Package webull is a thin client for the Webull OpenAPI. It covers the
// small endpoint surface the broker adapter needs: account discovery,
// positions, balance, instrument lookup, and order placement. Request
// signing, throttling, and response decoding live here so the adapter
// above stays a pure translation layer.
package webull

import "strings"

// Region selects the Webull OpenAPI endpoint cluster.
type Region string

const (
	RegionUS Region = "US"
	RegionHK Region = "HK"
	RegionJP Region = "JP"
)

// regionEndpoints maps each known region to its API host.
var regionEndpoints = map[Region]string{
	RegionUS: "https://api.webull.com",
	RegionHK: "https://api.webull.hk",
	RegionJP: "https://api.webull.co.jp",
}

// ParseRegion maps a region code to a known Region, case-insensitively.
// Unrecognised codes fall back to RegionUS.
func ParseRegion(s string) Region {
	switch Region(strings.ToUpper(strings.TrimSpace(s))) {
	case RegionHK:
		return RegionHK
	case RegionJP:
		return RegionJP
	default:
		return RegionUS
	}
}

// Endpoint returns the API base URL for the region.
func (r Region) Endpoint() string {
	if url, ok := regionEndpoints[r]; ok {
		return url
	}
	return regionEndpoints[RegionUS]
}
