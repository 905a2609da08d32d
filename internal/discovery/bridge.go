package discovery

import (
	"fmt"
	"time"
)

// Bridge represents a bridge found on the network
type Bridge struct {
	// Instance is the mDNS instance name (e.g., "ookbridge linux_a1b2c3")
	Instance string

	// Hostname is the mDNS hostname (e.g., "pi-garden.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when the bridge has none
	IP string

	// Port is the HTTP port of the live feed
	Port int

	// SourceID is the identity the bridge publishes readings under
	SourceID string

	// Version is the bridge's build version
	Version string

	// Metadata contains all mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("ookbridge %s (%s) at %s", b.SourceID, b.Hostname, b.Address())
}

// Address returns host:port, bracketing IPv6 addresses.
func (b *Bridge) Address() string {
	return fmt.Sprintf("%s:%d", hostLiteral(b.IP), b.Port)
}

// BaseURL returns the HTTP base URL for the bridge
func (b *Bridge) BaseURL() string {
	return "http://" + b.Address()
}

// FeedURL returns the websocket URL of the bridge's live feed.
func (b *Bridge) FeedURL() string {
	return "ws://" + b.Address() + FeedPath
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}

func hostLiteral(ip string) string {
	for i := 0; i < len(ip); i++ {
		if ip[i] == ':' {
			return "[" + ip + "]"
		}
	}
	return ip
}
