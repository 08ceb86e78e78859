// Package statuspage serves the operator-facing snapshot of every
// registered peer's health state, in both a JSON form (for pkg/statusclient
// and scripts) and a plain HTML table (for a browser).
package statuspage

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kflynn/healthcheckd/internal/healthcheck"
)

// Handler serves GET/HEAD requests for the status snapshot.
type Handler struct {
	registry *healthcheck.Registry
	logger   *zap.Logger
}

// NewHandler creates a status page handler backed by registry.
func NewHandler(registry *healthcheck.Registry, logger *zap.Logger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

// ServeHTTP implements http.Handler. Only GET and HEAD are accepted; every
// other method gets 405 with an Allow header, matching the "GET/HEAD only"
// requirement.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.registry.Snapshot()

	if strings.Contains(r.Header.Get("Accept"), "application/json") || r.URL.Query().Get("format") == "json" {
		h.serveJSON(w, snapshot)
		return
	}
	h.serveHTML(w, snapshot)
}

func (h *Handler) serveJSON(w http.ResponseWriter, snapshot []healthcheck.PeerStatus) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil && h.logger != nil {
		h.logger.Warn("failed to encode status snapshot", zap.Error(err))
	}
}

func (h *Handler) serveHTML(w http.ResponseWriter, snapshot []healthcheck.PeerStatus) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var b strings.Builder
	b.WriteString("<html><head><title>healthcheckd status</title></head><body>")
	b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr>")
	b.WriteString("<th>upstream</th><th>addr</th><th>state</th><th>owner</th><th>last</th><th>run</th><th>confidence</th></tr>")

	for _, p := range snapshot {
		state := "up"
		if !p.Enabled {
			state = "disabled"
		} else if p.Down {
			state = "down"
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%.2f</td></tr>",
			htmlEscape(p.Upstream), htmlEscape(p.Addr), state, htmlEscape(p.Owner), htmlEscape(p.LastOutcome), p.RunLength, p.Confidence)
	}

	b.WriteString("</table></body></html>")
	_, _ = w.Write([]byte(b.String()))
}

func htmlEscape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")
	return replacer.Replace(s)
}

// NewServer wraps Handler in an *http.Server so main.go can start and
// stop it alongside the rest of the daemon.
func NewServer(addr string, registry *healthcheck.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/status", NewHandler(registry, logger))
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
