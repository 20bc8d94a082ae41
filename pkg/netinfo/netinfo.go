// Package netinfo reports the address clients should use to reach the host.
package netinfo

import (
	"net"
	"os"

	"github.com/pkg/errors"
)

// PreferredInterface is the Raspberry Pi's WiFi interface.
const PreferredInterface = "wlan0"

// Interface is a named network interface and its addresses.
type Interface struct {
	Name  string
	Addrs []net.IP
}

// Info describes how the host can be reached.
type Info struct {
	IP         string   `json:"ip"`
	Hostname   string   `json:"hostname"`
	Interfaces []string `json:"interfaces"`
}

// Lookup inspects the host's interfaces.
func Lookup() (Info, error) {
	ifaces, err := hostInterfaces()
	if err != nil {
		return Info{}, err
	}
	hostname, err := os.Hostname()
	if err != nil {
		return Info{}, errors.Wrap(err, "hostname")
	}

	info := Info{
		IP:       PickIP(ifaces),
		Hostname: hostname,
	}
	for _, iface := range ifaces {
		info.Interfaces = append(info.Interfaces, iface.Name)
	}
	return info, nil
}

// PickIP returns the external IPv4 address of PreferredInterface, otherwise
// the last external IPv4 address found, otherwise "localhost".
func PickIP(ifaces []Interface) string {
	for _, iface := range ifaces {
		if iface.Name != PreferredInterface {
			continue
		}
		if ip := firstExternalIPv4(iface.Addrs); ip != "" {
			return ip
		}
	}

	ip := "localhost"
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			if isExternalIPv4(addr) {
				ip = addr.String()
			}
		}
	}
	return ip
}

func firstExternalIPv4(addrs []net.IP) string {
	for _, addr := range addrs {
		if isExternalIPv4(addr) {
			return addr.String()
		}
	}
	return ""
}

func isExternalIPv4(ip net.IP) bool {
	return ip.To4() != nil && !ip.IsLoopback()
}

func hostInterfaces() ([]Interface, error) {
	netIfaces, err := net.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "list interfaces")
	}

	ifaces := make([]Interface, 0, len(netIfaces))
	for _, ni := range netIfaces {
		addrs, err := ni.Addrs()
		if err != nil {
			return nil, errors.Wrapf(err, "addresses of %s", ni.Name)
		}
		iface := Interface{Name: ni.Name}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok {
				iface.Addrs = append(iface.Addrs, ipNet.IP)
			}
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces, nil
}
