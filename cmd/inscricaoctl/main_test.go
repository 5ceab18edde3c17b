package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/inscricao/pkg/audit"
	"github.com/doodlesbykumbi/inscricao/pkg/config"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store/memory"
)

func TestMigrationTargets(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = "postgres://db/inscricao"
	cfg.AuditEnabled = true
	cfg.AuditDatabaseURL = "postgres://db/audit"

	targets := migrationTargets(cfg)
	require.Len(t, targets, 2)
	assert.Equal(t, migrationTarget{Name: "reference+users", URL: "postgres://db/inscricao"}, targets[0])
	assert.Equal(t, migrationTarget{Name: "audit", URL: "postgres://db/audit"}, targets[1])

	cfg.UsersDatabaseURL = "postgres://other/users"
	cfg.AuditEnabled = false
	targets = migrationTargets(cfg)
	require.Len(t, targets, 2)
	assert.Equal(t, "reference", targets[0].Name)
	assert.Equal(t, "users", targets[1].Name)

	_, err := requireTargets(config.Default())
	assert.Error(t, err)
}

func TestWithMigrationsTable(t *testing.T) {
	assert.Equal(t,
		"postgres://db/x?x-migrations-table=inscricao_schema_migrations",
		withMigrationsTable("postgres://db/x"))
	assert.Equal(t,
		"postgres://db/x?sslmode=disable&x-migrations-table=inscricao_schema_migrations",
		withMigrationsTable("postgres://db/x?sslmode=disable"))
}

func TestShowConfiguration(t *testing.T) {
	cfg := config.Default()
	cfg.ConsumerSecret = "do-not-print"

	var text bytes.Buffer
	require.NoError(t, showConfiguration(&text, cfg, "text"))
	assert.Contains(t, text.String(), "wiki_base_url")
	assert.NotContains(t, text.String(), "do-not-print")

	var js bytes.Buffer
	require.NoError(t, showConfiguration(&js, cfg, "json"))
	assert.Contains(t, js.String(), `"attributes"`)

	assert.Error(t, showConfiguration(&bytes.Buffer{}, cfg, "xml"))
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "escolas.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
cities:
  - id: 1
    name: Salvador
    state: BA
schools:
  - id: 10
    name: Escola Municipal Castro Alves
    city: 1
`), 0o600))

	reference := memory.NewReferenceStore()
	result, err := loadSeedFile(context.Background(), reference, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Cities)
	assert.Equal(t, 1, result.Schools)

	schools, err := reference.ListSchoolsByCity(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, "Escola Municipal Castro Alves", schools[0].Name)

	_, err = loadSeedFile(context.Background(), reference, filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestReloadSeedIgnoresEmptyTrigger(t *testing.T) {
	trigger := filepath.Join(t.TempDir(), "load")
	require.NoError(t, os.WriteFile(trigger, []byte("\n"), 0o600))

	reference := memory.NewReferenceStore()
	reloadSeed(context.Background(), reference, trigger)

	cities, err := reference.ListCities(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cities)
}

func TestWaitForServer(t *testing.T) {
	ready := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ready.Close()
	assert.NoError(t, waitForServer(ready.URL+"/status", 3, time.Millisecond))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.Error(t, waitForServer(down.URL+"/status", 2, time.Millisecond))
}

func TestPrintAuditMessages(t *testing.T) {
	messages := []audit.Message{{
		Severity:  5,
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Msgid:     "registration",
		Message:   "alice registered",
	}}

	var text bytes.Buffer
	require.NoError(t, printAuditMessages(&text, messages, "text"))
	assert.Equal(t, "2024-03-01T12:00:00Z registration sev=5 alice registered\n", text.String())

	var js bytes.Buffer
	require.NoError(t, printAuditMessages(&js, messages, "json"))
	assert.Contains(t, js.String(), `"msgid": "registration"`)
}
