package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/joseph-ayodele/nutrition-extractor/internal/common"
	"github.com/joseph-ayodele/nutrition-extractor/internal/entity"
	"github.com/joseph-ayodele/nutrition-extractor/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the health endpoints.
const Version = "1.0.0"

// multipartOverhead leaves room for form fields next to the file part.
const multipartOverhead = 1 << 20

// Extractor is the pipeline as seen by the transports.
type Extractor interface {
	Process(ctx context.Context, doc []byte, credential string) entity.ExtractionResult
}

// HTTPServer exposes the extractor over REST.
type HTTPServer struct {
	extractor   Extractor
	maxFileSize int64
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	logger      *slog.Logger
}

func NewHTTPServer(ex Extractor, maxFileSize int64, m *metrics.Metrics, g prometheus.Gatherer, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return &HTTPServer{extractor: ex, maxFileSize: maxFileSize, metrics: m, gatherer: g, logger: logger}
}

// Router wires the routes onto a gorilla/mux router.
func (s *HTTPServer) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", s.instrument("/", s.handleRoot)).Methods("GET")
	router.HandleFunc("/health", s.instrument("/health", s.handleHealth)).Methods("GET")
	router.HandleFunc("/api/v1/extract", s.instrument("/api/v1/extract", s.handleExtract)).Methods("POST")
	router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return router
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Nutrition Extractor API",
		"version": Version,
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": Version})
}

func (s *HTTPServer) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx, rid := common.EnsureRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.maxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.badRequest(w, rid, common.MaxSize(s.maxFileSize)("file", tooLarge.Limit+1).Error())
			return
		}
		s.badRequest(w, rid, "invalid multipart form: "+err.Error())
		return
	}

	credential := r.FormValue("gemini_api_key")
	file, header, err := r.FormFile("file")
	var (
		data     []byte
		filename string
	)
	if err == nil {
		defer file.Close()
		filename = header.Filename
		data, err = io.ReadAll(io.LimitReader(file, s.maxFileSize+1))
		if err != nil {
			s.badRequest(w, rid, "read file: "+err.Error())
			return
		}
	}

	v := common.NewValidator().
		Field("file", data, common.Required, common.MaxSize(s.maxFileSize)).
		Field("gemini_api_key", credential, common.Required)
	if len(data) > 0 {
		v.Field("filename", filename, common.AllowedExtension)
	}
	if v.HasErrors() {
		s.badRequest(w, rid, v.ErrorMessage())
		return
	}

	s.logger.Info("http.extract.start", "req_id", rid, "filename", filename, "bytes", len(data))
	res := s.extractor.Process(ctx, data, credential)
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) badRequest(w http.ResponseWriter, rid, detail string) {
	s.logger.Warn("http.extract.invalid", "req_id", rid, "detail", detail)
	writeJSON(w, http.StatusBadRequest, map[string]string{"detail": detail})
}

func (s *HTTPServer) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.ObserveRequest(r.Method, route, strconv.Itoa(rec.status), time.Since(start))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
