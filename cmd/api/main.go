package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/newmeca/membership-api/internal/adapters/httpapi"
	"github.com/newmeca/membership-api/internal/adapters/lognotifier"
	memidalloc "github.com/newmeca/membership-api/internal/adapters/memory/idalloc"
	memidempotency "github.com/newmeca/membership-api/internal/adapters/memory/idempotency"
	memidentity "github.com/newmeca/membership-api/internal/adapters/memory/identityprovider"
	meminvoicerepo "github.com/newmeca/membership-api/internal/adapters/memory/invoicerepo"
	memmembershiprepo "github.com/newmeca/membership-api/internal/adapters/memory/membershiprepo"
	memprofilerepo "github.com/newmeca/membership-api/internal/adapters/memory/profilerepo"
	memtypecatalog "github.com/newmeca/membership-api/internal/adapters/memory/typecatalog"
	memuow "github.com/newmeca/membership-api/internal/adapters/memory/uow"
	postgres "github.com/newmeca/membership-api/internal/adapters/postgres"
	pgidalloc "github.com/newmeca/membership-api/internal/adapters/postgres/idalloc"
	pgidempotency "github.com/newmeca/membership-api/internal/adapters/postgres/idempotency"
	pginvoicerepo "github.com/newmeca/membership-api/internal/adapters/postgres/invoicerepo"
	pgmembershiprepo "github.com/newmeca/membership-api/internal/adapters/postgres/membershiprepo"
	pgprofilerepo "github.com/newmeca/membership-api/internal/adapters/postgres/profilerepo"
	pgtypecatalog "github.com/newmeca/membership-api/internal/adapters/postgres/typecatalog"
	"github.com/newmeca/membership-api/internal/app/billing"
	"github.com/newmeca/membership-api/internal/app/hierarchy"
	"github.com/newmeca/membership-api/internal/domain"
	platformclock "github.com/newmeca/membership-api/internal/platform/clock"
	"github.com/newmeca/membership-api/internal/platform/config"
	"github.com/newmeca/membership-api/internal/platform/logging"
	"github.com/newmeca/membership-api/internal/platform/metrics"
	idallocport "github.com/newmeca/membership-api/internal/ports/out/idalloc"
	idempotencyport "github.com/newmeca/membership-api/internal/ports/out/idempotency"
	invoicerepoport "github.com/newmeca/membership-api/internal/ports/out/invoicerepo"
	membershiprepoport "github.com/newmeca/membership-api/internal/ports/out/membershiprepo"
	profilerepoport "github.com/newmeca/membership-api/internal/ports/out/profilerepo"
	typecatalogport "github.com/newmeca/membership-api/internal/ports/out/typecatalog"
	uowport "github.com/newmeca/membership-api/internal/ports/out/uow"
)

func main() {
	// Local workflows keep their settings in .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("invalid logging config: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Auth configuration:
	// - Production: AUTH_MODE=jwt with an HS256 secret
	// - Local dev: AUTH_MODE=dev bypasses token verification and uses X-Debug-Profile
	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case "dev":
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevProfile)
	default:
		authMW = httpapi.NewAuthMiddleware([]byte(cfg.JWTSecret))
	}

	clk := platformclock.NewSystemClock()

	var (
		membershipRepo membershiprepoport.Repository
		profileRepo    profilerepoport.Repository
		invoiceRepo    invoicerepoport.Repository
		types          typecatalogport.Catalog
		tx             uowport.UnitOfWork
		ids            idallocport.Allocator
		idemStore      idempotencyport.Store
		cleanup        func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = pool.Close

		membershipRepo = pgmembershiprepo.NewRepo(pool)
		profileRepo = pgprofilerepo.NewRepo(pool)
		invoiceRepo = pginvoicerepo.NewRepo(pool)
		types = pgtypecatalog.NewCatalog(pool)
		tx = postgres.NewUnitOfWork(pool)
		ids = pgidalloc.NewAllocator(pool)
		idemStore = pgidempotency.NewStore(pool)
	default:
		membershipRepo = memmembershiprepo.NewRepo()
		profileRepo = memprofilerepo.NewRepo()
		invoiceRepo = meminvoicerepo.NewRepo()
		tx = memuow.New()
		ids = memidalloc.NewAllocator()
		idemStore = memidempotency.NewStore()

		// Seed one membership type so the memory backend is usable out of the box.
		catalog := memtypecatalog.NewCatalog()
		seedID := domain.MembershipTypeID(uuid.NewString())
		catalog.Put(typecatalogport.MembershipType{
			ID:    seedID,
			Name:  "Secondary Membership",
			Price: domain.MustMoney("25.00"),
		})
		types = catalog
		logger.Info("seeded memory membership type", zap.String("membershipTypeID", string(seedID)))
	}

	if cleanup != nil {
		defer cleanup()
	}

	engine := billing.NewEngine(invoiceRepo, clk, logger)
	engine.Company = domain.CompanyInfo{
		Name:    cfg.CompanyName,
		Email:   cfg.CompanyEmail,
		Website: cfg.CompanyWebsite,
	}
	engine.Currency = cfg.Currency

	svc := hierarchy.NewService(hierarchy.Deps{
		Memberships: membershipRepo,
		Profiles:    profileRepo,
		Types:       types,
		Billing:     engine,
		Tx:          tx,
		IDs:         ids,
		Notify:      lognotifier.NewGateway(logger),
		IdentityIDP: memidentity.NewProvider(),
		Clock:       clk,
		Log:         logger,
	})
	svc.MaxSecondaries = cfg.MaxSecondaries

	promReg := metrics.NewRegistry()
	api := httpapi.NewServer(svc, engine, idemStore)
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{
		Auth:           authMW,
		Metrics:        promReg.Middleware,
		MetricsHandler: promReg.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api listening", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
