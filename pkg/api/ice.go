package api

import (
	"github.com/pion/webrtc/v3"
	"github.com/tomaslejdung/pigate/pkg/settings"
)

// defaultICEServers is used when no STUN servers are configured.
var defaultICEServers = []webrtc.ICEServer{
	{URLs: []string{"stun:stun.l.google.com:19302"}},
}

// iceServers builds the ICE server list browsers should use for the relay.
func iceServers(s settings.Settings) []webrtc.ICEServer {
	var servers []webrtc.ICEServer
	if len(s.STUNServers) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: s.STUNServers})
	}
	if s.TURNServer != "" {
		servers = append(servers, webrtc.ICEServer{
			URLs:           []string{s.TURNServer},
			Username:       s.TURNUser,
			Credential:     s.TURNPass,
			CredentialType: webrtc.ICECredentialTypePassword,
		})
	}
	if len(servers) == 0 {
		return defaultICEServers
	}
	return servers
}
