package api

import (
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pion/webrtc/v3"
	"github.com/sirupsen/logrus"
	"github.com/tomaslejdung/pigate/pkg/gate"
	"github.com/tomaslejdung/pigate/pkg/netinfo"
)

// maxBodySize bounds request bodies; a code submission is tiny.
const maxBodySize = 4 * 1024

type validateRequest struct {
	Code string `json:"code"`
}

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type codeResponse struct {
	Code string `json:"code"`
}

type networkInfoResponse struct {
	netinfo.Info
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signaling server is healthy."))
}

// handleValidateCode checks a submitted access code against the current one,
// keyed on the caller's address for rate limiting.
func (s *Server) handleValidateCode(w http.ResponseWriter, r *http.Request) {
	ip := s.clientIP(r)

	var req validateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		logrus.WithField("ip", ip).WithError(err).Debug("Malformed validate-code request")
		writeJSON(w, http.StatusBadRequest, validateResponse{Valid: false, Message: "Invalid request"})
		return
	}

	result := s.gate.CheckCode(ip, strings.TrimSpace(req.Code), s.credentials.Current())

	status := http.StatusOK
	if result.Reason == gate.ReasonRateLimited {
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, validateResponse{
		Valid:   result.Admitted,
		Message: s.gate.Message(result),
	})
}

// handleCurrentCode exposes the access code for the receiver's projector
// display.
func (s *Server) handleCurrentCode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, codeResponse{Code: s.credentials.Current()})
}

func (s *Server) handleNetworkInfo(w http.ResponseWriter, r *http.Request) {
	info, err := netinfo.Lookup()
	if err != nil {
		logrus.WithError(err).Warn("Network lookup failed")
		info.IP = "localhost"
	}
	writeJSON(w, http.StatusOK, networkInfoResponse{
		Info:       info,
		ICEServers: iceServers(s.settings),
	})
}

func (s *Server) handleHostPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.settings.StaticDir, "host", "mainindex.html"))
}

func (s *Server) hostIP() string {
	info, err := netinfo.Lookup()
	if err != nil {
		return "localhost"
	}
	return info.IP
}

// clientIP returns the rate-limit identity for r: the first X-Forwarded-For
// hop when proxies are trusted, otherwise the peer address without its port.
func (s *Server) clientIP(r *http.Request) string {
	if s.settings.TrustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// withCORS allows cross-origin calls from the client pages and answers
// preflight requests directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Debug("Failed to write response")
	}
}
