// Package http exposes the monitoring API: hotspots, predictions,
// rainfall, user reports, and operational endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/floodline/waterlog-monitor/internal/domain"
	"github.com/floodline/waterlog-monitor/internal/report"
)

const reportWindow = 24 * time.Hour

// Aggregate is the snapshot side of the service: the current published
// state, on-demand refresh, and readiness.
type Aggregate interface {
	Current() *domain.Snapshot
	Refresh(ctx context.Context, trigger string) (*domain.Snapshot, bool)
	CheckReadiness(ctx context.Context) error
}

// ReportService is the user-report side of the service.
type ReportService interface {
	AddReport(ctx context.Context, location, severity, description string) (domain.UserReport, error)
	ActiveReports(window time.Duration) []domain.UserReport
	Geocode(ctx context.Context, location string) (domain.GeocodeResult, error)
}

// Predictor scores an arbitrary area at a rainfall level.
type Predictor interface {
	Assess(area string, rainfallMM float64) domain.RiskAssessment
}

// Server exposes the monitoring API over HTTP.
type Server struct {
	httpServer *http.Server
	aggregate  Aggregate
	reports    ReportService
	predictor  Predictor
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer creates the API server with all routes registered.
func NewServer(addr string, aggregate Aggregate, reports ReportService,
	predictor Predictor, clock clockwork.Clock, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		aggregate: aggregate,
		reports:   reports,
		predictor: predictor,
		clock:     clock,
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.handleSystemInfo)
	mux.HandleFunc("GET /hotspots", s.handleHotspots)
	mux.HandleFunc("GET /hotspots/{id}", s.handleHotspot)
	mux.HandleFunc("GET /predictions", s.handlePredictions)
	mux.HandleFunc("GET /rainfall", s.handleRainfall)
	mux.HandleFunc("GET /high-risk-areas", s.handleHighRiskAreas)
	mux.HandleFunc("POST /reports", s.handleSubmitReport)
	mux.HandleFunc("GET /reports", s.handleReports)
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("POST /refresh", s.handleRefresh)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, _ *http.Request) {
	lastUpdate := "never"
	if snap := s.aggregate.Current(); snap != nil {
		lastUpdate = snap.GeneratedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"system":  "Delhi Waterlogging Risk Monitor",
		"version": "3.0",
		"status":  "active",
		"features": []string{
			"Topography-based risk predictions",
			"User-reported locations with geocoding",
			"Delhi rainfall pattern analysis",
			"Historical incident correlation",
		},
		"last_update": lastUpdate,
	})
}

func (s *Server) handleHotspots(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Hotspots)
}

func (s *Server) handleHotspot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hotspot id")
		return
	}

	hotspot, found := snap.FindHotspot(id)
	if !found {
		writeError(w, http.StatusNotFound, "hotspot not found")
		return
	}
	writeJSON(w, http.StatusOK, hotspot)
}

// predictionView is the public shape of a ranked prediction, with the
// advisory message derived from the waterlogging flag.
type predictionView struct {
	WardName   string           `json:"ward_name"`
	RiskLevel  domain.RiskLevel `json:"risk_level"`
	Message    string           `json:"message"`
	Confidence int              `json:"confidence"`
	RiskScore  float64          `json:"risk_score"`
}

func (s *Server) handlePredictions(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	views := make([]predictionView, 0, len(snap.Predictions))
	for _, p := range snap.Predictions {
		message := "Monitor for possible waterlogging"
		if p.WillWaterlog {
			message = "Will likely waterlog in next 3 hours"
		}
		views = append(views, predictionView{
			WardName:   p.Area,
			RiskLevel:  p.RiskLevel,
			Message:    message,
			Confidence: p.Confidence,
			RiskScore:  p.RiskScore,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleRainfall(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Rainfall)
}

func (s *Server) handleHighRiskAreas(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	areas := snap.HighRiskAreas()
	alertLevel := "NORMAL"
	if len(areas) > 0 {
		alertLevel = "HIGH"
	}
	if areas == nil {
		areas = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"areas":       areas,
		"count":       len(areas),
		"alert_level": alertLevel,
		"timestamp":   s.clock.Now().Format(time.RFC3339),
	})
}

type submitReportRequest struct {
	Location    string `json:"location"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var req submitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.reports.AddReport(r.Context(), req.Location, req.Severity, req.Description)
	if err != nil {
		if errors.Is(err, report.ErrLocationRequired) {
			writeError(w, http.StatusBadRequest, "location is required")
			return
		}
		s.logger.Error("submit report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not submit report")
		return
	}

	// Fold the new report into the published snapshot right away.
	s.aggregate.Refresh(r.Context(), "report")

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "report submitted",
		"report_id": created.ReportID,
		"location":  created.Location,
		"coordinates": map[string]float64{
			"latitude":  created.Latitude,
			"longitude": created.Longitude,
		},
		"added_to_map": true,
	})
}

func (s *Server) handleReports(w http.ResponseWriter, _ *http.Request) {
	active := s.reports.ActiveReports(reportWindow)
	if active == nil {
		active = []domain.UserReport{}
	}
	writeJSON(w, http.StatusOK, active)
}

type predictRequest struct {
	Location string `json:"location"`
}

// predictResponse inlines the assessment next to the queried location.
// Coordinates appear only when geocoding finds the place.
type predictResponse struct {
	Location string `json:"location"`
	domain.RiskAssessment
	Coordinates *coordinates `json:"coordinates,omitempty"`
	Timestamp   string       `json:"timestamp"`
}

type coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Location == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}

	var rainfall float64
	if snap := s.aggregate.Current(); snap != nil {
		rainfall = snap.Rainfall.RainfallMM
	}

	resp := predictResponse{
		Location:       req.Location,
		RiskAssessment: s.predictor.Assess(req.Location, rainfall),
		Timestamp:      s.clock.Now().Format(time.RFC3339),
	}

	// Best-effort: a geocoding failure never fails the prediction.
	if coords, err := s.reports.Geocode(r.Context(), req.Location); err == nil && coords.Address != "" {
		resp.Coordinates = &coordinates{Latitude: coords.Lat, Longitude: coords.Lon}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, performed := s.aggregate.Refresh(r.Context(), "manual")

	var rainfall float64
	if snap != nil {
		rainfall = snap.Rainfall.RainfallMM
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"performed":   performed,
		"message":     "snapshot refreshed with current conditions",
		"rainfall_mm": rainfall,
		"timestamp":   s.clock.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.aggregate.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// snapshot fetches the current snapshot, answering 503 when none has been
// published yet.
func (s *Server) snapshot(w http.ResponseWriter) (*domain.Snapshot, bool) {
	snap := s.aggregate.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot published yet")
		return nil, false
	}
	return snap, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
