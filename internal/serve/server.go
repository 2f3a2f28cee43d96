// Package serve exposes a loaded model over HTTP: JSON prediction,
// health and model-info endpoints, Prometheus metrics, and hot reload of
// the artifact file through a filesystem watcher.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"diarisk/internal/metrics"
	"diarisk/internal/predict"
)

// Config carries the serving parameters the command layer resolved.
type Config struct {
	Port         int
	ArtifactPath string
	CacheSize    int
	CacheTTL     time.Duration
}

// Server routes prediction traffic to the current predictor. The
// predictor swaps atomically on artifact reload, so in-flight requests
// finish against the model they started with.
type Server struct {
	cfg     Config
	metrics *metrics.Metrics
	server  *http.Server
	current atomic.Value
}

// PredictionRequest is the /predict body: a bare feature vector in
// training column order, or a named record.
type PredictionRequest struct {
	Features []float64          `json:"features,omitempty"`
	Record   map[string]float64 `json:"record,omitempty"`
}

// PredictionResponse wraps a prediction result with serving metadata.
type PredictionResponse struct {
	predict.Result
	LatencyMS float64   `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// New builds a server around an initial predictor.
func New(pred *predict.Predictor, cfg Config, m *metrics.Metrics) *Server {
	s := &Server{cfg: cfg, metrics: m}
	s.current.Store(pred)

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.timed("/predict", s.handlePredict))
	mux.HandleFunc("/health", s.timed("/health", s.handleHealth))
	mux.HandleFunc("/model/info", s.timed("/model/info", s.handleModelInfo))
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("Starting model server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Reload replaces the predictor from the artifact path. The current
// predictor stays in place when loading fails.
func (s *Server) Reload() error {
	pred, err := predict.NewFromFile(s.cfg.ArtifactPath, s.cfg.CacheSize, s.cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("failed to reload artifact: %w", err)
	}
	pred.Metrics = s.metrics
	s.current.Store(pred)
	if s.metrics != nil {
		s.metrics.ArtifactReloads.Inc()
	}
	log.Info().
		Str("path", s.cfg.ArtifactPath).
		Str("variant", pred.Artifact().Variant).
		Msg("Artifact reloaded")
	return nil
}

func (s *Server) predictor() *predict.Predictor {
	pred, _ := s.current.Load().(*predict.Predictor)
	return pred
}

func (s *Server) timed(path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		h(w, r)
		if s.metrics != nil {
			s.metrics.HTTPRequestDuration.WithLabelValues(path).Observe(time.Since(started).Seconds())
		}
	}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	started := time.Now()

	var req PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Features) == 0 && len(req.Record) == 0 {
		http.Error(w, "request needs features or record", http.StatusBadRequest)
		return
	}
	if len(req.Features) > 0 && len(req.Record) > 0 {
		http.Error(w, "request must carry features or record, not both", http.StatusBadRequest)
		return
	}

	pred := s.predictor()
	var (
		result predict.Result
		err    error
	)
	if len(req.Features) > 0 {
		result, err = pred.PredictRow(req.Features)
	} else {
		result, err = pred.PredictMap(req.Record)
	}
	if err != nil {
		var nle *predict.NotLoadedError
		var foe *predict.FeatureOrderError
		switch {
		case errors.As(err, &nle):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		case errors.As(err, &foe):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Error().Err(err).Msg("Prediction failed")
			http.Error(w, fmt.Sprintf("prediction failed: %v", err), http.StatusInternalServerError)
		}
		return
	}

	resp := PredictionResponse{
		Result:    result,
		LatencyMS: float64(time.Since(started).Microseconds()) / 1000.0,
		Timestamp: time.Now().UTC(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	pred := s.predictor()

	status := http.StatusOK
	body := map[string]any{"status": "ok"}
	if pred == nil || pred.Artifact() == nil {
		status = http.StatusServiceUnavailable
		body["status"] = "no model loaded"
	} else {
		body["variant"] = pred.Artifact().Variant
		body["trained_at"] = pred.Artifact().Meta.TrainedAt
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	pred := s.predictor()
	if pred == nil || pred.Artifact() == nil {
		http.Error(w, "no model loaded", http.StatusServiceUnavailable)
		return
	}

	art := pred.Artifact()
	info := map[string]any{
		"id":            art.Meta.ID,
		"variant":       art.Variant,
		"params":        art.Params,
		"features":      art.Features,
		"trained_at":    art.Meta.TrainedAt,
		"test_accuracy": art.Meta.TestAccuracy,
		"cv_mean":       art.Meta.CVMean,
		"cv_std":        art.Meta.CVStd,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}
