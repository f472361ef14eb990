package main

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// ScanRequest is the synchronous scan payload. The enrichment blobs are
// optional: internal orchestrators that already hold a semantic or
// threat-intel verdict for the URL attach them here, and the fusion engine
// degrades gracefully when they are absent.
type ScanRequest struct {
	URL         string          `json:"url"`
	Semantic    json.RawMessage `json:"semantic,omitempty"`
	ThreatIntel json.RawMessage `json:"threat_intel,omitempty"`
}

// scanHandler serves both GET /scan?url=… (heuristics only) and
// POST /scan with a ScanRequest body (heuristics plus attached enrichment).
func scanHandler(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest

	switch r.Method {
	case http.MethodGet:
		req.URL = r.URL.Query().Get("url")
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Malformed request body", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if req.URL == "" {
		http.Error(w, "Missing 'url' parameter", http.StatusBadRequest)
		return
	}

	verdict := svc.Scan(r.Context(), req.URL, req.Semantic, req.ThreatIntel)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(verdict); err != nil {
		log.WithError(err).WithField("url", req.URL).Error("error encoding /scan response")
	}
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	guide := map[string]interface{}{
		"service": "URLVetter Engine",
		"version": "1.2.0",
		"capabilities": []string{
			"Structural URL feature extraction (entropy, decomposition, encoding)",
			"Homoglyph and brand lookalike detection",
			"Ordered heuristic rule scoring with explainable indicators",
			"Multi-source risk fusion (heuristic, semantic, threat intel)",
			"Hard overrides for confirmed-malicious intel",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(guide); err != nil {
		log.WithError(err).Error("error encoding /info response")
	}
}
