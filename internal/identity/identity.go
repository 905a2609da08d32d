// Package identity derives the stable source identifier included in every
// published payload, and the address announced at startup.
package identity

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"
	"strings"
)

// SourceID returns "<goos>_<id>", where id is the hex of the last three bytes
// of the first hardware address, the same width as a microcontroller chip
// id. Without a usable interface the hostname is used instead.
func SourceID() string {
	return sourceID(runtime.GOOS, net.Interfaces, os.Hostname)
}

func sourceID(goos string, ifaces func() ([]net.Interface, error), hostname func() (string, error)) string {
	if list, err := ifaces(); err == nil {
		if mac := firstHardwareAddr(list); mac != nil {
			return fmt.Sprintf("%s_%x", goos, []byte(mac[len(mac)-3:]))
		}
	}
	if name, err := hostname(); err == nil && name != "" {
		return goos + "_" + strings.ToLower(strings.SplitN(name, ".", 2)[0])
	}
	return goos + "_unknown"
}

// firstHardwareAddr picks the non-loopback interface with a MAC address,
// preferring interfaces that are up, in name order so the result is stable.
func firstHardwareAddr(list []net.Interface) net.HardwareAddr {
	candidates := make([]net.Interface, 0, len(list))
	for _, iface := range list {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) < 3 {
			continue
		}
		if bytes.Equal(iface.HardwareAddr, make([]byte, len(iface.HardwareAddr))) {
			continue
		}
		candidates = append(candidates, iface)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		upI := candidates[i].Flags&net.FlagUp != 0
		upJ := candidates[j].Flags&net.FlagUp != 0
		if upI != upJ {
			return upI
		}
		return candidates[i].Name < candidates[j].Name
	})

	if len(candidates) == 0 {
		return nil
	}
	return candidates[0].HardwareAddr
}

// LocalIP returns the IPv4 address used for outbound traffic, or the first
// non-loopback IPv4 address when there is no default route.
func LocalIP() (string, error) {
	// UDP dial sends nothing; it only selects a route.
	if conn, err := net.Dial("udp4", "192.0.2.1:9"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && !addr.IP.IsUnspecified() {
			return addr.IP.String(), nil
		}
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("list interface addresses: %w", err)
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}
	return "", fmt.Errorf("no non-loopback IPv4 address")
}
