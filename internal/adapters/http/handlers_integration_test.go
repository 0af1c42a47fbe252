//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samirrijal/seascope/internal/adapters/http"
	"github.com/samirrijal/seascope/internal/adapters/postgres"
	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/core/usecases"
	"github.com/samirrijal/seascope/internal/pkg/config"
)

// setupTestDB connects to the test database. Migrations must already be applied.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("seascope-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return &postgres.DB{Pool: pool}
}

// setupTestDeps wires the real query log and catalog repositories.
func setupTestDeps(t *testing.T, db *postgres.DB, cls *mockClassifier) *http.Dependencies {
	catalog := usecases.NewCatalogService(postgres.NewCatalogRepo(db))
	if err := catalog.Load(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	qlog := postgres.NewQueryLogRepo(db)
	resolver := usecases.NewRegionResolver(nil)

	return &http.Dependencies{
		Sessions: usecases.NewSessionManager(usecases.OrchestratorDeps{
			Classifier: cls,
			Reconciler: usecases.NewReconciler(catalog),
			Resolver:   resolver,
			QueryLog:   qlog,
			Options:    usecases.DefaultOrchestratorOptions(),
		}, 0),
		Catalog:  catalog,
		Resolver: resolver,
		QueryLog: qlog,
		DB:       db,
	}
}

func TestQueryLog_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	cls := &mockClassifier{fn: func(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
		return fishResponse(), nil
	}}
	app := setupApp(setupTestDeps(t, db, cls))
	id := createSession(t, app)

	body := map[string]interface{}{
		"prompt": "fish",
		"region": map[string]float64{"north": 44, "south": 43, "east": -2, "west": -3},
	}
	if code, b := doJSON(t, app, "POST", "/v1/sessions/"+id+"/query", body); code != 200 {
		t.Fatalf("query: expected 200, got %d: %s", code, b)
	}
	doJSON(t, app, "POST", "/v1/sessions/"+id+"/query", map[string]string{"prompt": ""})

	req := httptest.NewRequest("GET", "/v1/sessions/"+id+"/queries", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.QueryLogEntry `json:"data"`
		Pagination struct{ Total int }    `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// The empty prompt is logged but never sent.
	if result.Pagination.Total != 2 {
		t.Fatalf("expected 2 logged queries, got %d", result.Pagination.Total)
	}
	var e domain.QueryLogEntry
	var empties int
	for _, entry := range result.Data {
		if entry.Outcome == domain.OutcomeEmpty {
			empties++
		} else {
			e = entry
		}
	}
	if empties != 1 {
		t.Errorf("expected 1 empty-prompt entry, got %d", empties)
	}
	if e.Outcome != domain.OutcomeSuccess || e.TotalFeatures != 2 {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Region == nil || e.Region.North != 44 {
		t.Errorf("expected region to round-trip, got %+v", e.Region)
	}
	if len(e.Entities) != 2 {
		t.Errorf("expected 2 entities, got %v", e.Entities)
	}
}

func TestUpsertCatalog_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	name := "Test Kelp " + time.Now().Format("20060102150405")
	app := setupApp(setupTestDeps(t, db, &mockClassifier{}))

	code, b := doJSON(t, app, "POST", "/v1/catalog", map[string]string{"name": name, "category": "plants"})
	if code != 201 {
		t.Fatalf("expected 201, got %d: %s", code, b)
	}

	// A fresh service loads the entry back from the database.
	catalog := usecases.NewCatalogService(postgres.NewCatalogRepo(db))
	if err := catalog.Load(context.Background()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if !catalog.Contains(name) {
		t.Errorf("expected %q to be persisted", name)
	}

	if _, err := db.Pool.Exec(context.Background(), `DELETE FROM catalog_entries WHERE name = $1`, name); err != nil {
		t.Logf("cleanup: %v", err)
	}
}

func TestReady_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(t, db, &mockClassifier{}))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
