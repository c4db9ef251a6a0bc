package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/api"
	"github.com/kidandcat/heartquest/internal/auth"
	"github.com/kidandcat/heartquest/internal/config"
	"github.com/kidandcat/heartquest/internal/db"
	"github.com/kidandcat/heartquest/internal/media"
	"github.com/kidandcat/heartquest/internal/metrics"
	"github.com/kidandcat/heartquest/internal/narration"
	"github.com/kidandcat/heartquest/internal/narration/astra"
	"github.com/kidandcat/heartquest/internal/proposal"
	"github.com/kidandcat/heartquest/internal/supabase"
	"github.com/kidandcat/heartquest/internal/ui"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides HEARTQUEST_ADDR)")
	dataDir := flag.String("data", "", "data directory (overrides HEARTQUEST_DATA_DIR)")
	flag.Parse()

	cfg, err := config.Load(*addr, *dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// backend is the storage pair for the configured backend.
type backend struct {
	repo   proposal.Repository
	bucket media.Bucket
	closer io.Closer
}

func openBackend(cfg config.Config, log *zap.Logger, mux *http.ServeMux) (*backend, error) {
	switch cfg.Backend {
	case "supabase":
		client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key)
		if err != nil {
			return nil, fmt.Errorf("supabase: %w", err)
		}
		log.Info("using supabase backend", zap.String("url", cfg.Supabase.URL), zap.String("bucket", cfg.Supabase.Bucket))
		return &backend{
			repo:   supabase.NewRepo(client, log.Named("supabase")),
			bucket: supabase.NewBucket(client, cfg.Supabase.Bucket),
		}, nil
	default:
		repo, err := db.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		disk, err := media.NewDisk(filepath.Join(cfg.DataDir, "media"), "/media/")
		if err != nil {
			repo.Close()
			return nil, err
		}
		mux.Handle("GET /media/", disk.Handler())
		log.Info("using sqlite backend", zap.String("data_dir", cfg.DataDir))
		return &backend{repo: repo, bucket: disk, closer: repo}, nil
	}
}

func narrators(cfg config.Config, m *metrics.Collector, log *zap.Logger) (*narration.Guard, *narration.Voice) {
	nlog := log.Named("narration")
	var (
		gen narration.Generator
		syn narration.Synthesizer
	)
	if cfg.NarrationEnabled() {
		c := astra.New(astra.Config{
			APIKey:  cfg.Narration.APIKey,
			BaseURL: cfg.Narration.BaseURL,
			Model:   cfg.Narration.Model,
			Voice:   cfg.Narration.Voice,
		}, nlog)
		gen, syn = c, c
	} else {
		nlog.Info("narration model not configured, using fallback lines")
	}

	guard := narration.NewGuard(gen,
		narration.NewBreaker(narration.DefaultBreakerConfig("narration"), nlog),
		cfg.Narration.Timeout, nlog)
	guard.Observe(m.Narrated)
	voice := narration.NewVoice(syn,
		narration.NewBreaker(narration.DefaultBreakerConfig("speech"), nlog), nlog)
	return guard, voice
}

func run(cfg config.Config, log *zap.Logger) error {
	mux := http.NewServeMux()

	be, err := openBackend(cfg, log, mux)
	if err != nil {
		return err
	}
	if be.closer != nil {
		defer be.closer.Close()
	}

	m := metrics.New()
	if cfg.Metrics {
		mux.Handle("GET /metrics", m.Handler())
	}

	var verifier *auth.Verifier
	if cfg.AuthEnabled() {
		if verifier, err = auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer); err != nil {
			return err
		}
	} else {
		log.Warn("no JWT secret set, creator routes are closed")
	}

	guard, voice := narrators(cfg, m, log)
	api.New(api.Deps{
		Proposals: proposal.NewService(be.repo, proposal.RandomTokens(), log.Named("proposals")),
		Narrator:  guard,
		Voice:     voice,
		Bucket:    be.bucket,
		Verifier:  verifier,
		Metrics:   m,
		Log:       log.Named("api"),
		MaxUpload: cfg.MaxUpload,
		Dev:       cfg.Dev,
	}).RegisterRoutes(mux)

	ui.Routes()
	mux.Handle("/", &app.Handler{
		Name:        "HeartQuest",
		ShortName:   "HeartQuest",
		Title:       "HeartQuest",
		Description: "A journey through your memories, ending with a question.",
		Styles:      []string{"/web/heartquest.css"},
	})

	handler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})(recoverPanics(log)(logRequests(log, m)(mux)))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("HeartQuest running", zap.String("addr", cfg.Addr), zap.String("base_url", cfg.BaseURL))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}
