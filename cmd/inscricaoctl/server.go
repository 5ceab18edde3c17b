package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/inscricao/pkg/audit"
	"github.com/doodlesbykumbi/inscricao/pkg/config"
	"github.com/doodlesbykumbi/inscricao/pkg/crypt"
	"github.com/doodlesbykumbi/inscricao/pkg/db"
	"github.com/doodlesbykumbi/inscricao/pkg/metrics"
	"github.com/doodlesbykumbi/inscricao/pkg/server"
	"github.com/doodlesbykumbi/inscricao/pkg/server/endpoints"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store/cache"
	gormstore "github.com/doodlesbykumbi/inscricao/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/inscricao/pkg/session"
	"github.com/doodlesbykumbi/inscricao/pkg/tracing"
	"github.com/doodlesbykumbi/inscricao/pkg/wiki"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8080
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the registration server",
	Long: `Run the registration server.

The server requires INSCRICAO_DATA_KEY, INSCRICAO_CONSUMER_KEY,
INSCRICAO_CONSUMER_SECRET and DATABASE_URL (or the per-store
INSCRICAO_REFERENCE_DATABASE_URL and INSCRICAO_USERS_DATABASE_URL).

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate configuration first (fail fast)
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		// Run migrations unless --no-migrate is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Println("Running database migrations...")
			if err := runMigrations(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		if err := runServer(cfg, host, port); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(cfg *config.Config, host, port string) error {
	dataKey, err := cfg.DataKeyBytes()
	if err != nil {
		return fmt.Errorf("bad INSCRICAO_DATA_KEY: %w", err)
	}

	cipher, err := crypt.NewDeterministic(dataKey)
	if err != nil {
		return fmt.Errorf("unable to initiate cipher: %w", err)
	}

	sessions, err := session.NewManager(dataKey, cfg.SessionLifetime(), cfg.SecureCookies)
	if err != nil {
		return fmt.Errorf("unable to initiate sessions: %w", err)
	}

	dbs, err := db.ConnectPair(cfg.ReferenceURL(), cfg.UsersURL())
	if err != nil {
		return fmt.Errorf("unable to connect to DB: %w", err)
	}
	defer func() { _ = dbs.Close() }()

	tracer, err := tracing.NewProvider(tracing.Config{Exporter: cfg.TraceExporter})
	if err != nil {
		return fmt.Errorf("unable to initiate tracing: %w", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	var auditor *audit.Auditor
	if cfg.AuditEnabled {
		auditStore, err := audit.NewStore(cfg.AuditDatabaseURL)
		if err != nil {
			return fmt.Errorf("unable to open audit database: %w", err)
		}
		auditor = audit.NewAuditor(audit.NewLogger(), auditStore)
		defer func() { _ = auditor.Close() }()
	}

	s := server.NewServer(cfg, server.Deps{
		ReferenceStore:    cache.NewReferenceStore(gormstore.NewReferenceStore(dbs.Reference), cfg.CacheTTL()),
		RegistrationStore: gormstore.NewRegistrationStore(dbs.Users, cipher),
		HealthStore:       gormstore.NewHealthStore(dbs.Distinct()...),
		Sessions:          sessions,
		Wiki: wiki.NewClient(wiki.Config{
			BaseURL:        cfg.WikiBaseURL,
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
		}),
		Auditor: auditor,
		Metrics: metrics.New(),
		Tracer:  tracer.Tracer(),
	}, host, port)

	endpoints.RegisterAll(s)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Running server at http://%s:%s...\n", host, port)
		errCh <- s.Start()
	}()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigChan:
		log.Printf("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	}
}
