// Package chi is the HTTP transport: routing, request decoding and the
// fixed response shapes of the extractor API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	extractoruc "github.com/suthipongg/service-sentence-extractor/internal/usecase/extractor"
	healthuc "github.com/suthipongg/service-sentence-extractor/internal/usecase/health"
	reportuc "github.com/suthipongg/service-sentence-extractor/internal/usecase/report"
	tokenizeruc "github.com/suthipongg/service-sentence-extractor/internal/usecase/tokenizer"
)

const notFoundDetail = "Item not found."

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the extractor API over chi.
type Server struct {
	extractor     *extractoruc.Service
	reports       *reportuc.Service
	tokenizer     *tokenizeruc.Service
	health        *healthuc.Service
	validate      *validator.Validate
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	extractor *extractoruc.Service,
	reports *reportuc.Service,
	tokenizer *tokenizeruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		extractor: extractor,
		reports:   reports,
		tokenizer: tokenizer,
		health:    health,
		validate:  validator.New(),
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		notFoundHandler,
		badRequestHandler(domain.ErrEmptySentence),
		badRequestHandler(domain.ErrInvalidFilter),
		badRequestHandler(domain.ErrInvalidOperator),
		badRequestHandler(domain.ErrInvalidQuery),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway),
	}
	return s
}

// Mount registers all API routes on the router.
func (s *Server) Mount(r chirouter.Router) {
	r.Post("/extractor", s.handleSubmit)
	r.Post("/extractor/getList", s.handleGetList)
	r.Get("/extractor/{id}", s.handleGet)
	r.Delete("/extractor/{id}", s.handleDelete)
	r.Post("/extractor/model", s.handleModel)
	r.Post("/extractor/vectors", s.handleVectors)
	r.Get("/extractor/model/warmup", s.handleWarmup)

	r.Get("/report/extractor", s.handleReport)
	r.Get("/report/dependency", s.handleDependency)

	r.Post("/tokenizer/counter", s.handleTokenCount)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// handleSubmit handles POST /extractor. Known sentences come back with the
// bumped counter, new ones with their freshly minted identity and vector.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req extractorRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	rec, _, err := s.extractor.Submit(r.Context(), req.Sentence, req.createdAt())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleGetList handles POST /extractor/getList.
func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	var req bodyList
	if !s.decodeBody(w, r, &req) {
		return
	}

	fq, err := req.toQuery()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items, page, err := s.extractor.List(r.Context(), fq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   items,
		"meta":   map[string]any{"pagination": page},
	})
}

// handleGet handles GET /extractor/{id}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.extractor.Get(r.Context(), chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": rec.Document()})
}

// handleDelete handles DELETE /extractor/{id}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	rec, err := s.extractor.Delete(r.Context(), chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": rec.Document()})
}

// handleModel handles POST /extractor/model: raw embedding, no persistence.
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	var req sentencesRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.extractor.Encode(r.Context(), req.Sentences)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"vector": result.Vectors})
}

// handleVectors handles POST /extractor/vectors: stored vectors for known
// sentences, one embedding call for the rest.
func (s *Server) handleVectors(w http.ResponseWriter, r *http.Request) {
	var req sentencesRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	vectors, err := s.extractor.Vectors(r.Context(), req.Sentences)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"result": vectors})
}

// handleWarmup handles GET /extractor/model/warmup.
func (s *Server) handleWarmup(w http.ResponseWriter, r *http.Request) {
	if err := s.extractor.Warmup(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"detail": "success"})
}

// handleReport handles GET /report/extractor.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hist, err := s.reports.Histogram(r.Context(),
		q.Get("start_date"), q.Get("end_date"), q.Get("calendar_interval"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	buckets := make([]map[string]any, 0, len(hist.Buckets))
	for _, b := range hist.Buckets {
		buckets = append(buckets, map[string]any{
			"key_as_string": b.Key,
			"doc_count":     b.Count,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data": map[string]any{
			"total_by_day": map[string]any{"buckets": buckets},
			"total_count":  map[string]any{"value": hist.CounterSum},
		},
	})
}

// handleDependency handles GET /report/dependency.
func (s *Server) handleDependency(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := make(map[string]string, len(report.Checks))
	for name, check := range report.Checks {
		if check == healthuc.CheckOK {
			status[name] = "connected"
		} else {
			status[name] = "disconnected"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

// handleTokenCount handles POST /tokenizer/counter.
func (s *Server) handleTokenCount(w http.ResponseWriter, r *http.Request) {
	var req sentencesRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	counts, err := s.tokenizer.Count(r.Context(), req.Sentences)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token_count": counts})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// decodeBody decodes and validates a JSON request body. Writes the 400
// response itself and returns false when the body is unusable.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

// notFoundHandler keeps the item-level not-found contract: HTTP 200 with
// status false.
func notFoundHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrItemNotFound) {
		return false
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": false, "detail": notFoundDetail})
	return true
}

// badRequestHandler maps a validation sentinel to 400 with its message.
func badRequestHandler(sentinel error) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return true
	}
}

func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, err.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
