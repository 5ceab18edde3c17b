package integration

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/inscricao/pkg/crypt"
	"github.com/doodlesbykumbi/inscricao/pkg/db"
	"github.com/doodlesbykumbi/inscricao/pkg/seed"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/inscricao/pkg/server/store/gorm"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB            *gorm.DB
	Container     testcontainers.Container
	DatabaseURL   string // Connection string for the test database
	DataKey       []byte
	Registrations store.RegistrationStore
	Wiki          *FakeWiki
	Server        *ServerInstance
	InlineMode    bool
	BinaryPath    string
}

// NewTestContext creates a new test context with PostgreSQL testcontainer.
// Modes:
//   - Binary mode (default): Set INSCRICAO_BINARY to the path of the inscricaoctl binary
//   - Inline mode: Set INSCRICAO_INLINE=1 to run the server in-process (no binary needed)
func NewTestContext(ctx context.Context) (*TestContext, error) {
	// Find project root and migrations directory
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}

	// Check mode
	inlineMode := os.Getenv("INSCRICAO_INLINE") == "1"
	binaryPath := os.Getenv("INSCRICAO_BINARY")

	if !inlineMode && binaryPath == "" {
		return nil, fmt.Errorf("Either INSCRICAO_BINARY or INSCRICAO_INLINE=1 is required.\n\nBinary mode:\n  go build -o inscricaoctl ./cmd/inscricaoctl\n  INTEGRATION_TEST=1 INSCRICAO_BINARY=$(pwd)/inscricaoctl go test -v ./test/integration/...\n\nInline mode:\n  INTEGRATION_TEST=1 INSCRICAO_INLINE=1 go test -v ./test/integration/...")
	}

	if !inlineMode {
		// Verify the binary exists
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("INSCRICAO_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	// Start PostgreSQL container
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("inscricao_test"),
		tcpostgres.WithUsername("inscricao"),
		tcpostgres.WithPassword("inscricao"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	// Run migrations
	if err := runMigrations(connStr, filepath.Join(projectRoot, "db", "migrations")); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Load the reference data every scenario relies on
	data, err := seed.ParseFile(filepath.Join("testdata", "escolas.yml"))
	if err == nil {
		_, err = seed.Load(ctx, gormstore.NewReferenceStore(database), data)
	}
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to seed reference data: %w", err)
	}

	// Create data key and cipher
	dataKey := make([]byte, crypt.KeySize)
	for i := range dataKey {
		dataKey[i] = byte(i)
	}
	cipher, err := crypt.NewDeterministic(dataKey)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	tc := &TestContext{
		DB:            database,
		Container:     pgContainer,
		DatabaseURL:   connStr,
		DataKey:       dataKey,
		Registrations: gormstore.NewRegistrationStore(database, cipher),
		Wiki:          NewFakeWiki(),
		InlineMode:    inlineMode,
		BinaryPath:    binaryPath,
	}

	tc.Server, err = StartServer(tc)
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}
	return tc, nil
}

// ResetRegistrations removes every registration between scenarios.
func (tc *TestContext) ResetRegistrations() error {
	return tc.DB.Exec("DELETE FROM users").Error
}

// waitForServer polls the server until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/status")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Server != nil {
		tc.Server.Stop()
	}
	if tc.Wiki != nil {
		tc.Wiki.Close()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	// Try relative paths from test directory
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations applies the up migrations in migrationsDir
func runMigrations(dbURL, migrationsDir string) error {
	m, err := migrate.New("file://"+migrationsDir, dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
