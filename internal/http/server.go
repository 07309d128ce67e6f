package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/terrence-gonsalves/truespend/internal/cache"
	"github.com/terrence-gonsalves/truespend/internal/config"
	"github.com/terrence-gonsalves/truespend/internal/middleware/ratelimit"
	"github.com/terrence-gonsalves/truespend/internal/middleware/security"
	"github.com/terrence-gonsalves/truespend/internal/middleware/trace"
	"github.com/terrence-gonsalves/truespend/internal/services"
)

type Server struct {
	http.Server

	imports      *services.ImportService
	budgets      *services.BudgetService
	dashboards   *services.DashboardService
	categories   *services.CategoryService
	transactions *services.TransactionService

	maxUploadBytes int64

	rateLimiter  *ratelimit.Limiter
	cacheManager *cache.Manager

	// Per-owner read caches; any write under the owner invalidates both.
	summaryCache *cache.LRUCache[services.Summary]
	monthsCache  *cache.LRUCache[[]services.MonthOption]

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(
	cfg *config.Config,
	imports *services.ImportService,
	budgets *services.BudgetService,
	dashboards *services.DashboardService,
	categories *services.CategoryService,
	transactions *services.TransactionService,
) *Server {
	s := &Server{
		imports:        imports,
		budgets:        budgets,
		dashboards:     dashboards,
		categories:     categories,
		transactions:   transactions,
		maxUploadBytes: cfg.MaxUploadBytes,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		cacheManager: cache.NewManager(),
		summaryCache: cache.NewLRUCache[services.Summary](cfg.CacheSize, cfg.CacheTTL),
		monthsCache:  cache.NewLRUCache[[]services.MonthOption](cfg.CacheSize, cfg.CacheTTL),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.monthsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	api := http.NewServeMux()
	api.HandleFunc("POST /import/inspect", s.handleImportInspect)
	api.HandleFunc("POST /import/commit", s.handleImportCommit)
	api.HandleFunc("GET /import/presets", s.handleListPresets)
	api.HandleFunc("POST /import/presets", s.handleSavePreset)
	api.HandleFunc("GET /import/batches", s.handleListBatches)

	api.HandleFunc("GET /dashboard", s.handleDashboard)

	api.HandleFunc("GET /budgets", s.handleListBudgets)
	api.HandleFunc("PUT /budgets", s.handleSetBudget)
	api.HandleFunc("DELETE /budgets", s.handleDeleteBudget)
	api.HandleFunc("GET /budgets/months", s.handleAvailableMonths)

	api.HandleFunc("GET /categories", s.handleListCategories)
	api.HandleFunc("POST /categories", s.handleCreateCategory)
	api.HandleFunc("PATCH /categories/{id}", s.handleUpdateCategory)
	api.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)
	api.HandleFunc("POST /categories/{id}/archive", s.handleArchiveCategory)
	api.HandleFunc("POST /categories/{id}/unarchive", s.handleUnarchiveCategory)
	api.HandleFunc("POST /categories/merge", s.handleMergeCategories)

	api.HandleFunc("GET /transactions", s.handleListTransactions)
	api.HandleFunc("PATCH /transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	api.HandleFunc("POST /transactions/bulk/delete", s.handleBulkDelete)
	api.HandleFunc("POST /transactions/bulk/category", s.handleBulkSetCategory)
	api.HandleFunc("POST /transactions/bulk/account", s.handleBulkSetAccount)

	api.HandleFunc("GET /accounts", s.handleListAccounts)
	api.HandleFunc("POST /accounts", s.handleCreateAccount)

	mux.Handle("/", withOwner(api))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(extractClientIP)
	limited := s.rateLimiter.Middleware(extractClientIP, nil)

	s.Server = http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           headers.Middleware(tracer.Middleware(limited(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateOwner drops the owner's cached reads after any write.
func (s *Server) invalidateOwner(ownerID string) {
	s.summaryCache.DeletePrefix(ownerID + "|")
	s.monthsCache.Delete(ownerID)
}

// extractClientIP resolves the client address, honoring proxy headers.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
