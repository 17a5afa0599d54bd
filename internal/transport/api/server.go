package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is implemented by the HTTP handlers.
type ServerInterface interface {
	// SearchItems handles GET /items/search.
	SearchItems(w http.ResponseWriter, r *http.Request, params SearchItemsParams)
	// InvalidateIndex handles POST /index/invalidate.
	InvalidateIndex(w http.ResponseWriter, r *http.Request)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si's routes on opts.BaseRouter (or a new router).
func HandlerWithOptions(si ServerInterface, opts ChiServerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if opts.ErrorHandlerFunc == nil {
		opts.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	w := &wrapper{handler: si, errorHandler: opts.ErrorHandlerFunc}

	r.Get(opts.BaseURL+"/items/search", w.SearchItems)
	r.Post(opts.BaseURL+"/index/invalidate", w.InvalidateIndex)
	r.Get(opts.BaseURL+"/health", w.HealthCheck)
	r.Get(opts.BaseURL+"/metrics", w.Metrics)
	return r
}

type wrapper struct {
	handler      ServerInterface
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

func (w *wrapper) SearchItems(rw http.ResponseWriter, r *http.Request) {
	var params SearchItemsParams
	query := r.URL.Query()

	bind := []struct {
		name string
		dest any
	}{
		{"q", &params.Q},
		{"category", &params.Category},
		{"condition", &params.Condition},
		{"city", &params.City},
		{"state", &params.State},
		{"minPrice", &params.MinPrice},
		{"maxPrice", &params.MaxPrice},
		{"startDate", &params.StartDate},
		{"endDate", &params.EndDate},
		{"sortBy", &params.SortBy},
		{"page", &params.Page},
		{"limit", &params.Limit},
	}
	for _, b := range bind {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			w.errorHandler(rw, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}

	w.handler.SearchItems(rw, r, params)
}

func (w *wrapper) InvalidateIndex(rw http.ResponseWriter, r *http.Request) {
	w.handler.InvalidateIndex(rw, r)
}

func (w *wrapper) HealthCheck(rw http.ResponseWriter, r *http.Request) {
	w.handler.HealthCheck(rw, r)
}

func (w *wrapper) Metrics(rw http.ResponseWriter, r *http.Request) {
	w.handler.Metrics(rw, r)
}
