package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"urlvetter/internal/queue"
	"urlvetter/internal/store"

	"github.com/google/uuid"
)

// UploadResponse is what we send back to the user
type UploadResponse struct {
	JobID     string `json:"job_id"`
	TotalRows int    `json:"total_rows"`
	Message   string `json:"message"`
}

// uploadHandler accepts a CSV of URLs (one per row, first column), creates
// a scan job and enqueues one task per URL for the worker pool.
func uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form (max 10MB).
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "File too large or malformed", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing 'file' parameter in form data", http.StatusBadRequest)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	var urls []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, "Invalid CSV format", http.StatusBadRequest)
			return
		}
		if len(record) > 0 && record[0] != "" {
			urls = append(urls, record[0])
		}
	}

	if len(urls) == 0 {
		http.Error(w, "CSV is empty", http.StatusBadRequest)
		return
	}

	jobID := uuid.New().String()
	ctx := r.Context()

	query := `INSERT INTO scan_jobs (id, status, total_count, created_at) VALUES ($1, 'pending', $2, $3)`
	if _, err := store.DB.Exec(ctx, query, jobID, len(urls), time.Now()); err != nil {
		log.WithError(err).Error("failed to create scan job")
		http.Error(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	enqueued := 0
	for _, u := range urls {
		if err := queue.Enqueue(ctx, queue.Task{JobID: jobID, URL: u}); err != nil {
			log.WithError(err).WithField("url", u).Error("failed to enqueue scan task")
			continue
		}
		enqueued++
	}

	log.WithFields(log.Fields{"job_id": jobID, "urls": enqueued}).Info("scan job created")

	w.Header().Set("Content-Type", "application/json")
	resp := UploadResponse{
		JobID:     jobID,
		TotalRows: len(urls),
		Message:   "Job created successfully. Processing started.",
	}
	json.NewEncoder(w).Encode(resp)
}
