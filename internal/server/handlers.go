package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// analyzeHandler accepts a PDF upload and returns the analysis artifact.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeErrorResponse(w, "No PDF file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}
	uploadSizeBytes.Observe(float64(header.Size))

	// The container reader works on files, so spool the upload to disk.
	path, cleanup, err := s.spoolUpload(file, header.Filename)
	if err != nil {
		s.writeErrorResponse(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	defer cleanup()

	doc, err := s.openDoc(path)
	if err != nil {
		analyzeRequestsTotal.WithLabelValues("error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Invalid PDF: %v", err), http.StatusBadRequest)
		return
	}

	s.hub.Broadcast(ProgressEvent{Status: "processing", File: header.Filename})

	artifact, stats, err := s.analyzer.Analyze(doc)
	if err != nil {
		analyzeRequestsTotal.WithLabelValues("error").Inc()
		s.hub.Broadcast(ProgressEvent{Status: "error", File: header.Filename, Error: err.Error()})
		s.writeErrorResponse(w, fmt.Sprintf("Analysis failed: %v", err), http.StatusInternalServerError)
		return
	}

	analyzeRequestsTotal.WithLabelValues("success").Inc()
	s.hub.Broadcast(ProgressEvent{
		Status:    "completed",
		File:      header.Filename,
		Instances: stats.Instances,
		Shapes:    stats.UniqueShapes,
	})

	w.Header().Set("Content-Type", "application/json")
	response := AnalyzeResponse{Success: true, Artifact: artifact, Stats: stats}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode analyze response", "error", err)
	}
}

// spoolUpload writes the uploaded stream to a temp file and returns its
// path with a cleanup func.
func (s *Server) spoolUpload(file io.Reader, name string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "pdfcad-upload-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	base := filepath.Base(name)
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "upload.pdf"
	}
	path := filepath.Join(dir, base)

	out, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close upload: %w", err)
	}
	return path, cleanup, nil
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := AnalyzeResponse{Success: false, Error: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
