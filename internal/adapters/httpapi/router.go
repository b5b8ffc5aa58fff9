package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions carries the optional middleware wired around the API routes.
type RouterOptions struct {
	// Auth authenticates requests and stores the profile id in context.
	Auth func(http.Handler) http.Handler
	// Metrics instruments requests; nil disables instrumentation.
	Metrics func(http.Handler) http.Handler
	// MetricsHandler serves GET /metrics when non-nil.
	MetricsHandler http.Handler
}

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: it wires routes/middleware and
// delegates request handling to Server.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics)
	}
	if opts.Auth != nil {
		r.Use(opts.Auth)
	}

	// Health endpoint is unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/memberships", func(r chi.Router) {
		r.Route("/{membershipID}", func(r chi.Router) {
			r.Post("/upgrade-to-master", s.UpgradeToMaster)
			r.Get("/master-info", s.GetMasterInfo)
			r.Get("/secondaries", s.ListSecondaries)
			r.Post("/secondaries", s.CreateSecondary)
			r.Get("/invoices", s.ListMasterInvoices)
		})

		r.Route("/secondaries/{secondaryID}", func(r chi.Router) {
			r.Delete("/", s.RemoveSecondary)
			r.Patch("/", s.UpdateSecondaryDetails)
			r.Post("/upgrade-to-independent", s.UpgradeToIndependent)
			r.Post("/confirm-payment", s.ConfirmSecondaryPayment)
		})
	})

	r.Route("/profiles/me", func(r chi.Router) {
		r.Get("/controlled-meca-ids", s.ListControlledMecaIDs)
		r.Get("/controlled-meca-ids/{mecaID}", s.CheckMecaIDAccess)
		r.Get("/secondary-status", s.GetSecondaryStatus)
	})

	r.Post("/admin/repair/secondary-profiles", s.RepairSecondaryProfiles)

	return r
}
