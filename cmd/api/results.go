package main

import (
	"encoding/json"
	"net/http"

	"urlvetter/internal/store"
)

// VerdictRow is a single scanned URL from the database. Data carries the
// full ScanVerdict JSONB; RawMessage keeps it from being re-escaped.
type VerdictRow struct {
	URL   string          `json:"url"`
	Score int             `json:"score"`
	Tier  string          `json:"tier"`
	Data  json.RawMessage `json:"data"`
}

func resultsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "Missing 'id' parameter", http.StatusBadRequest)
		return
	}

	query := `SELECT url, score, tier, data FROM verdicts WHERE job_id = $1 ORDER BY id ASC`

	rows, err := store.DB.Query(r.Context(), query, jobID)
	if err != nil {
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var results []VerdictRow
	for rows.Next() {
		var row VerdictRow
		if err := rows.Scan(&row.URL, &row.Score, &row.Tier, &row.Data); err != nil {
			continue // Skip malformed rows
		}
		results = append(results, row)
	}

	// Return an empty array rather than null while a job is still running.
	if results == nil {
		results = []VerdictRow{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
