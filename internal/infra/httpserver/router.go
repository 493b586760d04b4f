package httpserver

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/cors"
    "github.com/sirupsen/logrus"

    domain "github.com/bryanwahyu/opticode/internal/domain/analysis"
    "github.com/bryanwahyu/opticode/internal/middleware"
)

// Analyzer is the application service behind POST /analyze.
type Analyzer interface {
    Analyze(ctx context.Context, req domain.Request) domain.Response
}

type Router struct {
    analyzer Analyzer
}

func NewRouter(analyzer Analyzer, checks map[string]middleware.HealthChecker, log logrus.FieldLogger) http.Handler {
    r := &Router{analyzer: analyzer}
    mux := chi.NewRouter()

    mux.Use(cors.Handler(cors.Options{
        AllowedOrigins: []string{"*"},
        AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
        AllowedHeaders: []string{"*"},
    }))
    mux.Use(middleware.RequestID)
    mux.Use(middleware.LoggingMiddleware(log))
    mux.Use(middleware.MetricsMiddleware)

    mux.Get("/health", middleware.HealthHandler(checks))
    mux.Get("/ready", middleware.ReadinessHandler)
    mux.Get("/live", middleware.LivenessHandler)
    mux.Get("/metrics", middleware.MetricsHandler)

    mux.Post("/analyze", r.wrap(r.handleAnalyze))

    return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// requestError is a malformed body; the analysis itself never errors.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
    return func(w http.ResponseWriter, req *http.Request) {
        if err := h(w, req); err != nil {
            status := http.StatusInternalServerError
            var reqErr *requestError
            if errors.As(err, &reqErr) {
                status = http.StatusUnprocessableEntity
            }
            writeJSON(w, status, map[string]string{"detail": err.Error()})
        }
    }
}

// POST /analyze
// Body: {"code": "<snippet>", "model": "gemini|groq"}
// Always answers 200 once the body is valid; failures are reported in security_score.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
    var body struct {
        Code  json.RawMessage `json:"code"`
        Model json.RawMessage `json:"model"`
    }
    if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
        return &requestError{msg: "invalid request body: " + err.Error()}
    }
    if body.Code == nil {
        return &requestError{msg: "code is required"}
    }

    in := domain.Request{Model: string(domain.DefaultModel)}
    if err := decodeString("code", body.Code, &in.Code); err != nil {
        return err
    }
    if body.Model != nil {
        if err := decodeString("model", body.Model, &in.Model); err != nil {
            return err
        }
    }

    resp := r.analyzer.Analyze(req.Context(), in)
    middleware.RecordAnalysis(string(domain.ParseModel(in.Model)), resp.SecurityScore)

    writeJSON(w, http.StatusOK, resp)
    return nil
}

// decodeString accepts only a JSON string; null and other types are rejected.
func decodeString(field string, raw json.RawMessage, dst *string) error {
    if string(raw) == "null" {
        return &requestError{msg: field + " must be a string, got null"}
    }
    if err := json.Unmarshal(raw, dst); err != nil {
        return &requestError{msg: field + " must be a string"}
    }
    return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(v)
}
