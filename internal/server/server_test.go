package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/catalog"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/config"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = t.TempDir()
	cfg.Server.DevMode = true
	return cfg
}

func TestNewServer_SeedsCatalog(t *testing.T) {
	cfg := testConfig(t)

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	n, err := srv.GetStore().CountAccommodations()
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	season, err := srv.GetStore().GetSeason()
	require.NoError(t, err)
	assert.Equal(t, 1447, season)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBootstrap_CatalogFileAndKeepExisting(t *testing.T) {
	cfg := testConfig(t)
	catalogPath := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(`
hotels:
  - id: x-1
    name: Only Hotel
    location: Makkah
`), 0o644))
	cfg.Data.CatalogFile = catalogPath

	srv, err := NewServer(cfg)
	require.NoError(t, err)

	records, err := srv.GetStore().ListAccommodations()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "x-1", records[0].ID)
	require.NoError(t, srv.Close())

	// 已有目录时不再覆盖
	cfg.Data.CatalogFile = ""
	srv, err = NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	records, err = srv.GetStore().ListAccommodations()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestBootstrap_BadCatalogFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestReloadCatalog_BackfillsDrafts(t *testing.T) {
	cfg := testConfig(t)

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	st := srv.GetStore()
	require.NoError(t, st.BatchInsertGroups([]*model.PilgrimGroup{{
		ID:          "g-1",
		GroupName:   "G1",
		Assignments: []model.ResolvedAssignment{{AccommodationID: "htl-001", AccommodationName: "Makkah Grand Hotel", PilgrimsAssigned: 10}},
	}}))

	// 新目录中同名酒店换了 ID
	cat := catalog.New(catalog.Sources{
		Hotels: []model.AccommodationRecord{{ID: "htl-901", Name: "Makkah Grand Hotel", Location: "Makkah"}},
	})
	repaired, err := srv.ReloadCatalog(cat)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	g, err := st.GetGroup("g-1")
	require.NoError(t, err)
	assert.Equal(t, "htl-901", g.Assignments[0].AccommodationID)
}
