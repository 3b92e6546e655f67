package transport

// NetworkType classifies the connection the environment reports,
// selecting a bandwidth-limit profile.
type NetworkType string

const (
	NetworkWiFi     NetworkType = "wifi"
	NetworkMobile   NetworkType = "mobile"
	NetworkEthernet NetworkType = "ethernet"
	NetworkUnknown  NetworkType = "unknown"
)

// BandwidthCaps maps each network type to its maximum concurrent
// in-flight request count.
type BandwidthCaps map[NetworkType]int

// DefaultBandwidthCaps is a conservative default profile: the highest
// caps on ethernet (16) and wifi (8), tightly bounded on mobile (2), and
// a safe minimum (4) when the network type can't be determined.
var DefaultBandwidthCaps = BandwidthCaps{
	NetworkEthernet: 16,
	NetworkWiFi:     8,
	NetworkMobile:   2,
	NetworkUnknown:  4,
}

// CapFor returns the configured cap for network, falling back to the
// unknown-network cap when network has no explicit entry.
func (c BandwidthCaps) CapFor(network NetworkType) int {
	if v, ok := c[network]; ok {
		return v
	}
	return c[NetworkUnknown]
}
