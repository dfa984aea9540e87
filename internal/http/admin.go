package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
	"github.com/goliatone/go-publish/internal/invariants"
	"github.com/goliatone/go-publish/internal/jobs"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBasePath is where the admin routes mount when no base path is set.
const DefaultBasePath = "/admin/api"

// ItemService reads and transitions single items.
type ItemService interface {
	GetItem(ctx context.Context, id uuid.UUID) (*content.Item, error)
	Transition(ctx context.Context, req lifecycle.TransitionRequest) (*content.Item, error)
}

// SweepService runs the schedule sweeper on demand.
type SweepService interface {
	RunSweep(ctx context.Context, kind *domain.Kind) (*jobs.SweepReport, error)
}

// AuditService classifies the items of a kind.
type AuditService interface {
	AuditInvariants(ctx context.Context, kind domain.Kind) (*invariants.Report, error)
}

// BulkService applies operations to many items and repairs orphans.
type BulkService interface {
	BulkMutate(ctx context.Context, req bulk.Request) (*bulk.Result, error)
	RepairOrphans(ctx context.Context, kind domain.Kind, strategy bulk.Strategy, at *time.Time) (*bulk.RepairResult, error)
}

// AdminAPI serves the publish admin endpoints.
type AdminAPI struct {
	basePath string
	items    ItemService
	sweeps   SweepService
	audits   AuditService
	bulk     BulkService
	registry *prometheus.Registry
	metrics  *requestMetrics
	logger   interfaces.Logger
	maxBody  int64
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: DefaultBasePath,
		logger:   logging.NoOp(),
		maxBody:  1 << 20,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	if api.registry != nil {
		api.metrics = newRequestMetrics(api.registry)
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

func WithItemService(service ItemService) AdminOption {
	return func(api *AdminAPI) {
		api.items = service
	}
}

func WithSweepService(service SweepService) AdminOption {
	return func(api *AdminAPI) {
		api.sweeps = service
	}
}

func WithAuditService(service AuditService) AdminOption {
	return func(api *AdminAPI) {
		api.audits = service
	}
}

func WithBulkService(service BulkService) AdminOption {
	return func(api *AdminAPI) {
		api.bulk = service
	}
}

// WithRegistry enables request metrics and the /metrics endpoint.
func WithRegistry(registry *prometheus.Registry) AdminOption {
	return func(api *AdminAPI) {
		api.registry = registry
	}
}

func WithLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithMaxBodyBytes caps request bodies. Non-positive values are ignored.
func WithMaxBodyBytes(limit int64) AdminOption {
	return func(api *AdminAPI) {
		if limit > 0 {
			api.maxBody = limit
		}
	}
}

// Register attaches the admin endpoints to the provided router.
func (api *AdminAPI) Register(r chi.Router) error {
	if r == nil {
		return fmt.Errorf("http: router is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	if api.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(api.registry, promhttp.HandlerOpts{}))
	}

	r.Route(joinPath(api.basePath, ""), func(r chi.Router) {
		r.Use(api.observe)
		r.Route("/items/{ref}", func(r chi.Router) {
			r.Get("/", api.handleGetItem)
			r.Post("/transition", api.handleTransition)
			r.Get("/audit", api.handleAudit)
			r.Post("/repair", api.handleRepair)
		})
		r.Post("/schedule/sweep", api.handleSweep)
		r.Post("/bulk", api.handleBulk)
	})
	return nil
}

// Handler returns a standalone router with the admin endpoints registered.
func (api *AdminAPI) Handler() (http.Handler, error) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	if err := api.Register(router); err != nil {
		return nil, err
	}
	return router, nil
}
