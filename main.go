package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"Thermolab/internal/admin"
	"Thermolab/internal/auth"
	"Thermolab/internal/calc/batch"
	"Thermolab/internal/calc/importer"
	"Thermolab/internal/calc/preview"
	"Thermolab/internal/calc/report"
	"Thermolab/internal/config"
	"Thermolab/internal/experiments"
	"Thermolab/internal/lab"
	"Thermolab/internal/pkg/logger"
	"Thermolab/internal/repo"
)

var wg sync.WaitGroup

const (
	limiterSweepInterval = time.Minute
	limiterIdle          = 10 * time.Minute
)

// deps are the stores behind the router. In catalog-only mode only exps is
// set; save_run answers 503 and the admin routes are not mounted.
type deps struct {
	cfg       *config.Config
	exps      lab.Experiments
	adminExps repo.ExperimentRepository
	runs      repo.RunRepository
	users     repo.UserRepository
}

func CORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if origin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleList mounts the routes. Idle rate limiter entries are swept until
// ctx is done.
func HandleList(ctx context.Context, router *mux.Router, d deps) {
	svc := lab.NewService(d.exps, d.runs)
	labH := &lab.Handler{Svc: svc}
	previewH := &preview.Handler{}
	reportH := &report.Handler{Calc: svc}
	importH := &importer.Handler{Calc: svc}
	batchH := &batch.Handler{Svc: svc}

	limiter := auth.NewIPRateLimiter(rate.Limit(d.cfg.RateLimit.RequestsPerSecond), d.cfg.RateLimit.Burst)
	go limiter.Cleanup(ctx, limiterSweepInterval, limiterIdle)

	router.Use(requestLogger)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/experiments", labH.List).Methods("GET")
	api.HandleFunc("/experiments/{slug}", labH.Get).Methods("GET")
	api.HandleFunc("/calculate", labH.Calculate).Methods("POST")
	api.HandleFunc("/save_run", labH.SaveRun).Methods("POST")
	api.HandleFunc("/simulate", previewH.Simulate).Methods("POST")
	api.HandleFunc("/report/{slug}", reportH.Generate).Methods("POST")
	api.HandleFunc("/import/{slug}", importH.Import).Methods("POST")
	api.HandleFunc("/batch", batchH.Calc).Methods("POST")

	if d.users != nil {
		authEnv := &auth.Authenv{
			JWTkey:   []byte(d.cfg.Auth.TokenKey),
			Expiry:   d.cfg.Auth.TokenExpiry,
			Repo:     d.users,
			Insecure: !d.cfg.Server.TLS(),
		}
		adminH := &admin.Handler{Exps: d.adminExps, Runs: d.runs}

		api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
		api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

		secure := router.PathPrefix("/admin").Subrouter()
		secure.Use(limiter.LimitMiddleware, authEnv.AuthMiddleware)

		secure.HandleFunc("/", adminH.Dashboard).Methods("GET")
		secure.HandleFunc("/runs", adminH.ListRuns).Methods("GET")
		secure.HandleFunc("/experiments/template", adminH.Template).Methods("GET")
		secure.HandleFunc("/experiments", adminH.Create).Methods("POST")
		secure.HandleFunc("/experiments/{id:[0-9]+}", adminH.Get).Methods("GET")
		secure.HandleFunc("/experiments/{id:[0-9]+}", adminH.Update).Methods("PUT", "PATCH")
		secure.HandleFunc("/instructors", authEnv.RegisterHandler).Methods("POST")
	}

	router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static")))
}

// openStores connects to Postgres, creates the schema and seeds the built-in
// experiments. In catalog-only mode it returns the embedded catalog instead.
func openStores(ctx context.Context, cfg *config.Config) (deps, *sql.DB, error) {
	catalog, err := experiments.Builtin()
	if err != nil {
		return deps{}, nil, err
	}
	if cfg.CatalogOnly {
		return deps{cfg: cfg, exps: lab.CatalogExperiments{Catalog: catalog}}, nil, nil
	}

	db, err := repo.Open(ctx, cfg.Database)
	if err != nil {
		return deps{}, nil, err
	}
	if err := repo.Migrate(ctx, db); err != nil {
		db.Close()
		return deps{}, nil, err
	}
	exps := repo.NewPostgresExperimentDB(db)
	added, err := repo.Seed(ctx, exps, catalog.All())
	if err != nil {
		db.Close()
		return deps{}, nil, err
	}
	if added > 0 {
		logger.Info("seeded experiments", zap.Int("count", added))
	}
	return deps{
		cfg:       cfg,
		exps:      exps,
		adminExps: exps,
		runs:      repo.NewPostgresRunDB(db),
		users:     repo.NewPostgresUserDB(db),
	}, db, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Replace(zap.NewExample())
		logger.Fatal("configuration error", zap.Error(err))
	}
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, db, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("storage unavailable", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	router := mux.NewRouter()
	HandleList(ctx, router, d)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: CORS(cfg.Server.AllowedOrigin, router),
	}

	logger.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.Bool("tls", cfg.Server.TLS()),
		zap.Bool("catalog_only", cfg.CatalogOnly))

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.Server.TLS() {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, closing active connections")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	wg.Wait()
	logger.Info("server stopped")
}
