// Package server exposes the shape analysis pipeline over HTTP: PDF upload
// in, JSON artifact out, with health, metrics and a progress WebSocket.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wan-andrea/recover-pdfCAD/internal/document"
	"github.com/wan-andrea/recover-pdfCAD/internal/pipeline"
	"github.com/wan-andrea/recover-pdfCAD/internal/shapes"
)

// Analyzer runs the two-pass analysis over a document.
type Analyzer interface {
	Analyze(doc document.Document) (*shapes.Artifact, *pipeline.Stats, error)
}

// DocumentOpener loads a document from a file path.
type DocumentOpener func(path string) (document.Document, error)

// Server holds the HTTP server state and dependencies.
type Server struct {
	analyzer    Analyzer
	openDoc     DocumentOpener
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	rateLimiter *RateLimiter
	hub         *ProgressHub
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// AnalyzeResponse wraps the analysis result for the HTTP API.
type AnalyzeResponse struct {
	Success  bool             `json:"success"`
	Artifact *shapes.Artifact `json:"artifact,omitempty"`
	Stats    *pipeline.Stats  `json:"stats,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// NewServer creates a server around an analyzer.
func NewServer(config Config, analyzer Analyzer) *Server {
	return &Server{
		analyzer:    analyzer,
		openDoc:     openPDF,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
		hub:         NewProgressHub(),
	}
}

// WithDocumentOpener overrides how uploaded files are opened, mainly for
// tests.
func (s *Server) WithDocumentOpener(open DocumentOpener) *Server {
	s.openDoc = open
	return s
}

// WithRateLimiter enables per-client rate limiting.
func (s *Server) WithRateLimiter(rl *RateLimiter) *Server {
	s.rateLimiter = rl
	return s
}

// Hub returns the progress hub, so pipeline runs can publish into it.
func (s *Server) Hub() *ProgressHub { return s.hub }

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/analyze", s.corsMiddleware(s.rateLimitMiddleware(s.analyzeHandler)))
	mux.HandleFunc("/ws/progress", s.progressWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

func openPDF(path string) (document.Document, error) {
	return document.Open(path)
}
