package netinfo

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickIPPrefersWLAN(t *testing.T) {
	ifaces := []Interface{
		{Name: "lo", Addrs: []net.IP{net.ParseIP("127.0.0.1")}},
		{Name: "eth0", Addrs: []net.IP{net.ParseIP("192.168.1.20")}},
		{Name: "wlan0", Addrs: []net.IP{net.ParseIP("fe80::1"), net.ParseIP("10.42.0.1")}},
	}
	require.Equal(t, "10.42.0.1", PickIP(ifaces))
}

func TestPickIPFallsBackToLastExternal(t *testing.T) {
	ifaces := []Interface{
		{Name: "lo", Addrs: []net.IP{net.ParseIP("127.0.0.1")}},
		{Name: "eth0", Addrs: []net.IP{net.ParseIP("192.168.1.20")}},
		{Name: "eth1", Addrs: []net.IP{net.ParseIP("172.16.0.5")}},
		{Name: "wlan0", Addrs: []net.IP{net.ParseIP("fe80::1")}},
	}
	require.Equal(t, "172.16.0.5", PickIP(ifaces))
}

func TestPickIPLocalhostWhenNothingExternal(t *testing.T) {
	ifaces := []Interface{
		{Name: "lo", Addrs: []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")}},
	}
	require.Equal(t, "localhost", PickIP(ifaces))
	require.Equal(t, "localhost", PickIP(nil))
}

func TestLookup(t *testing.T) {
	info, err := Lookup()
	require.NoError(t, err)
	require.NotEmpty(t, info.IP)
	require.NotEmpty(t, info.Hostname)
}
