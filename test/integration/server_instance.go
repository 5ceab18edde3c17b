package integration

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/doodlesbykumbi/inscricao/pkg/config"
	"github.com/doodlesbykumbi/inscricao/pkg/crypt"
	"github.com/doodlesbykumbi/inscricao/pkg/db"
	"github.com/doodlesbykumbi/inscricao/pkg/metrics"
	"github.com/doodlesbykumbi/inscricao/pkg/server"
	"github.com/doodlesbykumbi/inscricao/pkg/server/endpoints"
	gormstore "github.com/doodlesbykumbi/inscricao/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/inscricao/pkg/session"
	"github.com/doodlesbykumbi/inscricao/pkg/wiki"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

const (
	testConsumerKey    = "integration-consumer"
	testConsumerSecret = "integration-secret"
)

// ServerInstance represents a running inscricao server
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Port          int
	cancel        context.CancelFunc
	database      *db.Pair
	serverProcess *exec.Cmd // For binary mode
}

// StartServer starts a server against the test database and fake wiki.
// This supports both inline and binary modes based on how the test suite was started.
func StartServer(tc *TestContext) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(tc)
	}
	return startBinaryServerInstance(tc)
}

// startInlineServerInstance starts an in-process server
func startInlineServerInstance(tc *TestContext) (*ServerInstance, error) {
	// Allocate a unique port
	port := int(atomic.AddInt32(&portCounter, 1))

	cfg := config.Default()
	cfg.WikiBaseURL = tc.Wiki.URL
	cfg.ConsumerKey = testConsumerKey
	cfg.ConsumerSecret = testConsumerSecret
	cfg.DatabaseURL = tc.DatabaseURL
	cfg.DataKey = base64.StdEncoding.EncodeToString(tc.DataKey)

	pair, err := db.ConnectPair(cfg.ReferenceURL(), cfg.UsersURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cipher, err := crypt.NewDeterministic(tc.DataKey)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewManager(tc.DataKey, cfg.SessionLifetime(), false)
	if err != nil {
		return nil, err
	}

	s := server.NewServer(cfg, server.Deps{
		ReferenceStore:    gormstore.NewReferenceStore(pair.Reference),
		RegistrationStore: gormstore.NewRegistrationStore(pair.Users, cipher),
		HealthStore:       gormstore.NewHealthStore(pair.Distinct()...),
		Sessions:          sessions,
		Wiki: wiki.NewClient(wiki.Config{
			BaseURL:        cfg.WikiBaseURL,
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
		}),
		Metrics: metrics.New(),
	}, "127.0.0.1", fmt.Sprintf("%d", port))
	endpoints.RegisterAll(s)

	_, cancel := context.WithCancel(context.Background())

	instance := &ServerInstance{
		Server:    s,
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:      port,
		cancel:    cancel,
		database:  pair,
	}

	// Start server in background
	go func() {
		_ = s.Start()
	}()

	// Wait for server to be ready
	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// startBinaryServerInstance starts a server using the inscricaoctl binary
func startBinaryServerInstance(tc *TestContext) (*ServerInstance, error) {
	// Allocate a unique port
	port := int(atomic.AddInt32(&portCounter, 1))
	portStr := fmt.Sprintf("%d", port)

	ctx, cancel := context.WithCancel(context.Background())

	// Use --no-migrate since we already ran migrations in the test setup
	cmd := exec.CommandContext(ctx, tc.BinaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", portStr)
	cmd.Env = append(os.Environ(),
		"INSCRICAO_CONFIG_PATH="+os.TempDir(),
		"DATABASE_URL="+tc.DatabaseURL,
		"INSCRICAO_DATA_KEY="+base64.StdEncoding.EncodeToString(tc.DataKey),
		"INSCRICAO_WIKI_BASE_URL="+tc.Wiki.URL,
		"INSCRICAO_CONSUMER_KEY="+testConsumerKey,
		"INSCRICAO_CONSUMER_SECRET="+testConsumerSecret,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:          port,
		cancel:        cancel,
		serverProcess: cmd,
	}

	// Wait for server to be ready
	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.cancel != nil {
		si.cancel()
	}
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = si.Server.Shutdown(ctx)
		cancel()
	}
	if si.database != nil {
		_ = si.database.Close()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}
