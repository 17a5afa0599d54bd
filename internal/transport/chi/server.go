package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rentdex/internal/domain"
	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/query"
	"github.com/kailas-cloud/rentdex/internal/domain/search/result"
	"github.com/kailas-cloud/rentdex/internal/transport/api"
	healthuc "github.com/kailas-cloud/rentdex/internal/usecase/health"
	"github.com/kailas-cloud/rentdex/internal/version"
)

// dateOnly is the short form accepted for startDate/endDate.
const dateOnly = "2006-01-02"

// Searcher runs catalog searches and index invalidation.
type Searcher interface {
	Search(ctx context.Context, p query.Params) (result.Page, error)
	InvalidateIndex(ctx context.Context) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements api.ServerInterface.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ api.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	// ErrIndexBuild wraps ErrDataAccess, so it must be matched first.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, api.ErrorResponseCodeInvalidQuery),
		sentinelHandler(domain.ErrIndexBuild, http.StatusServiceUnavailable, api.ErrorResponseCodeIndexUnavailable),
		sentinelHandler(domain.ErrDataAccess, http.StatusBadGateway, api.ErrorResponseCodeDataAccessError),
	}
	return s
}

// SearchItems handles GET /items/search.
func (s *Server) SearchItems(w http.ResponseWriter, r *http.Request, params api.SearchItemsParams) {
	p, err := paramsFromAPI(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, err.Error())
		return
	}

	page, err := s.search.Search(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToAPI(&page))
}

// InvalidateIndex handles POST /index/invalidate.
func (s *Server) InvalidateIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.search.InvalidateIndex(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]api.HealthResponseChecks, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = api.HealthResponseChecks(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, api.HealthResponse{
		Status:  api.HealthResponseStatus(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler renders query binding failures as 400s.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, api.ErrorResponseCodeBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorResponseCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Validation errors carry
// their detail; store failures only expose the sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) {
		return err.Error()
	}
	for _, s := range []error{domain.ErrIndexBuild, domain.ErrDataAccess} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code api.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.ErrorResponseCodeInternalError, "internal error")
}

func paramsFromAPI(in api.SearchItemsParams) (query.Params, error) {
	p := query.Params{
		Text:      derefString(in.Q),
		Category:  derefString(in.Category),
		Condition: derefString(in.Condition),
		City:      derefString(in.City),
		State:     derefString(in.State),
		MinPrice:  in.MinPrice,
		MaxPrice:  in.MaxPrice,
		SortBy:    derefString(in.SortBy),
		Page:      derefInt(in.Page),
		Limit:     derefInt(in.Limit),
	}

	var err error
	if p.AvailableFrom, err = parseDate("startDate", in.StartDate); err != nil {
		return query.Params{}, err
	}
	if p.AvailableTo, err = parseDate("endDate", in.EndDate); err != nil {
		return query.Params{}, err
	}
	return p, nil
}

// parseDate accepts RFC 3339 or YYYY-MM-DD (midnight UTC).
func parseDate(name string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, *v)
	if err != nil {
		return nil, fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD, got %q", name, *v)
	}
	return &t, nil
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func pageToAPI(p *result.Page) api.SearchResponse {
	data := make([]api.Item, len(p.Items))
	for i := range p.Items {
		data[i] = itemToAPI(&p.Items[i])
	}
	return api.SearchResponse{
		Data: data,
		Pagination: api.Pagination{
			Page:    p.Pagination.Page,
			Limit:   p.Pagination.Limit,
			Total:   p.Pagination.Total,
			Pages:   p.Pagination.Pages,
			HasNext: p.Pagination.HasNext,
			HasPrev: p.Pagination.HasPrev,
		},
		SearchMetadata: api.SearchMetadata{
			ExactMatches:   p.Metadata.ExactMatches,
			FuzzyMatches:   p.Metadata.FuzzyMatches,
			TotalProcessed: p.Metadata.TotalProcessed,
			SearchTimeMs:   p.Metadata.Elapsed.Milliseconds(),
		},
	}
}

func itemToAPI(it *catalog.Item) api.Item {
	return api.Item{
		ID:            it.ID,
		Title:         it.Title,
		Description:   it.Description,
		DailyPrice:    it.DailyPrice,
		WeeklyPrice:   it.WeeklyPrice,
		MonthlyPrice:  it.MonthlyPrice,
		Category:      it.Category,
		Brand:         it.Brand,
		Model:         it.Model,
		Condition:     string(it.Condition),
		City:          it.City,
		State:         it.State,
		AverageRating: it.Rating,
		ReviewCount:   it.ReviewCount,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
		Owner:         api.Owner{ID: it.Owner.ID, Name: it.Owner.Name},
	}
}
