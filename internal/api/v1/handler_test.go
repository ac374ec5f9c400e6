package v1

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/catalog"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/importer"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	store  *store.Store
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cat := catalog.New(catalog.Sources{
		Hotels: []model.AccommodationRecord{
			{ID: "h-1", Name: "Grand Hotel", Location: "Makkah"},
			{ID: "h-2", Name: "Grand Hotel Annex", Location: "Makkah"},
			{ID: "h-3", Name: "Green Hotel", Location: "Madinah"},
		},
		MinaTents: []model.AccommodationRecord{
			{ID: "m-1", Name: "Mina Camp 1", Location: "Mina"},
		},
	})
	require.NoError(t, st.ReplaceAccommodations(cat.Records()))

	router := gin.New()
	NewHandler(st, importer.ImportOptions{DefaultDestination: "makkah"}).RegisterRoutes(router.Group("/api"))
	return &testEnv{store: st, router: router}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) insertGroup(t *testing.T, g *model.PilgrimGroup) {
	t.Helper()
	require.NoError(t, e.store.BatchInsertGroups([]*model.PilgrimGroup{g}))
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.insertGroup(t, &model.PilgrimGroup{ID: "g-1", GroupName: "G1", TotalPilgrims: 10})

	w := env.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	decode(t, w, &resp)
	assert.True(t, resp.Initialized)
	assert.Equal(t, 1, resp.TotalGroups)
	assert.Equal(t, 1, resp.DraftGroups)
	assert.Equal(t, 4, resp.Accommodations)
	assert.Empty(t, resp.LastImportTime)
}

func TestListAccommodations_Filters(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	var resp struct {
		Items []model.AccommodationRecord `json:"items"`
		Total int                         `json:"total"`
	}
	w := env.do(t, http.MethodGet, "/api/accommodations?destination=mecca", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "h-1", resp.Items[0].ID)
	assert.Equal(t, "h-2", resp.Items[1].ID)

	w = env.do(t, http.MethodGet, "/api/accommodations?category=mina_tent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "m-1", resp.Items[0].ID)
}

func TestAllocate_ExplicitAndFallback(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body := map[string]interface{}{
		"rows": []map[string]interface{}{
			{"accommodations": "grand hotel annex: 30, Green Hotel: 10"},
			{"totalPilgrims": 187},
			{"hotel": "Unknown Inn", "totalPilgrims": 5, "destination": "Jeddah"},
		},
	}

	w := env.do(t, http.MethodPost, "/api/allocate", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []AllocateItem `json:"items"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Items, 3)

	first := resp.Items[0]
	assert.Equal(t, model.AllocationExplicit, first.Source)
	require.Len(t, first.Assignments, 2)
	assert.Equal(t, "h-2", first.Assignments[0].AccommodationID)
	assert.Equal(t, "Grand Hotel Annex", first.Assignments[0].AccommodationName)
	assert.Equal(t, 30, first.Assignments[0].PilgrimsAssigned)
	assert.Equal(t, "h-3", first.Assignments[1].AccommodationID)

	// 无目的地时使用默认目的地 makkah
	second := resp.Items[1]
	assert.Equal(t, model.AllocationFallback, second.Source)
	require.Len(t, second.Assignments, 2)
	assert.Equal(t, 94, second.Assignments[0].PilgrimsAssigned)
	assert.Equal(t, 93, second.Assignments[1].PilgrimsAssigned)

	third := resp.Items[2]
	assert.Equal(t, model.AllocationNone, third.Source)
	assert.Empty(t, third.Assignments)
}

func TestAllocate_BadRequest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/allocate", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGroup_BackfillsAndPersists(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.insertGroup(t, &model.PilgrimGroup{
		ID:            "g-1",
		GroupName:     "G1",
		TotalPilgrims: 40,
		Assignments: []model.ResolvedAssignment{
			{AccommodationName: "green hotel", PilgrimsAssigned: 40},
			{AccommodationID: "gone", AccommodationName: "Grand Hotel", PilgrimsAssigned: 0},
		},
	})

	w := env.do(t, http.MethodGet, "/api/groups/g-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var g model.PilgrimGroup
	decode(t, w, &g)
	require.Len(t, g.Assignments, 2)
	assert.Equal(t, "h-3", g.Assignments[0].AccommodationID)
	assert.Equal(t, "green hotel", g.Assignments[0].AccommodationName)
	assert.Equal(t, "h-1", g.Assignments[1].AccommodationID)

	stored, err := env.store.GetGroup("g-1")
	require.NoError(t, err)
	assert.Equal(t, "h-3", stored.Assignments[0].AccommodationID)
	assert.Equal(t, "h-1", stored.Assignments[1].AccommodationID)
}

func TestGetGroup_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/groups/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListGroups_Paging(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	arrival := model.MovementArrival
	for i, name := range []string{"A", "B", "C"} {
		env.insertGroup(t, &model.PilgrimGroup{ID: "g-" + name, GroupName: name, RowNo: i + 2, Movement: arrival, Destination: "Makkah"})
	}
	env.insertGroup(t, &model.PilgrimGroup{ID: "g-D", GroupName: "D", RowNo: 9, Movement: model.MovementDeparture})

	var resp struct {
		Items []model.PilgrimGroup `json:"items"`
		Total int                  `json:"total"`
	}
	w := env.do(t, http.MethodGet, "/api/groups?movement=arrival&page=2&pageSize=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "C", resp.Items[0].GroupName)
	assert.NotNil(t, resp.Items[0].Assignments)
}

func TestUpdateAssignments(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.insertGroup(t, &model.PilgrimGroup{ID: "g-1", GroupName: "G1", TotalPilgrims: 50})

	w := env.do(t, http.MethodPut, "/api/groups/g-1/assignments", UpdateAssignmentsRequest{
		Assignments: []model.ResolvedAssignment{
			{AccommodationName: " Grand Hotel ", PilgrimsAssigned: 30, ContractNumber: " C-1 "},
			{AccommodationName: "Green Hotel", PilgrimsAssigned: 0},
			{AccommodationName: "Mina", PilgrimsAssigned: 20},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := env.store.GetGroup("g-1")
	require.NoError(t, err)
	require.Len(t, stored.Assignments, 2)
	assert.Equal(t, "h-1", stored.Assignments[0].AccommodationID)
	assert.Equal(t, "C-1", stored.Assignments[0].ContractNumber)
	assert.Equal(t, "m-1", stored.Assignments[1].AccommodationID)

	w = env.do(t, http.MethodPut, "/api/groups/g-1/assignments", UpdateAssignmentsRequest{
		Assignments: []model.ResolvedAssignment{{AccommodationName: "Grand Hotel", PilgrimsAssigned: -1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/groups/missing/assignments", UpdateAssignmentsRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmGroup(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.insertGroup(t, &model.PilgrimGroup{
		ID:          "g-1",
		GroupName:   "G1",
		Assignments: []model.ResolvedAssignment{{AccommodationName: "Grand Hotel Annex", PilgrimsAssigned: 12}},
	})

	w := env.do(t, http.MethodPost, "/api/groups/g-1/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := env.store.GetGroup("g-1")
	require.NoError(t, err)
	assert.Equal(t, model.GroupStatusConfirmed, stored.Status)
	assert.NotNil(t, stored.ConfirmedAt)
	assert.Equal(t, "h-2", stored.Assignments[0].AccommodationID)

	// 已确认团组不能再编辑
	w = env.do(t, http.MethodPut, "/api/groups/g-1/assignments", UpdateAssignmentsRequest{})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBackfillGroups(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.insertGroup(t, &model.PilgrimGroup{
		ID:          "g-1",
		GroupName:   "G1",
		Assignments: []model.ResolvedAssignment{{AccommodationName: "Mina Camp 1", PilgrimsAssigned: 5}},
	})

	w := env.do(t, http.MethodPost, "/api/groups/backfill", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Repaired int `json:"repaired"`
	}
	decode(t, w, &resp)
	assert.Equal(t, 1, resp.Repaired)
}

func TestImport_StreamsEvents(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Arrivals"))
	rows := [][]interface{}{
		{"Group Name", "Destination", "Total Pilgrims", "Hotel"},
		{"G-1", "Makkah", 20, "Green Hotel"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := row
		require.NoError(t, f.SetSheetRow("Arrivals", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "arrivals.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "arrivals.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("clearExisting", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"type":"done"`)

	groups, err := env.store.ListGroups(store.GroupQueryOptions{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "h-3", groups[0].Assignments[0].AccommodationID)
	assert.Equal(t, "arrivals.xlsx", groups[0].SourceFile)
}

func TestImport_MissingFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("clearExisting", "true"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport_Workbook(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.insertGroup(t, &model.PilgrimGroup{
		ID:          "g-1",
		GroupName:   "G1",
		Assignments: []model.ResolvedAssignment{{AccommodationName: "Grand Hotel", PilgrimsAssigned: 7}},
	})

	w := env.do(t, http.MethodPost, "/api/export", ExportRequest{IncludeCatalog: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Accommodations")

	id, err := f.GetCellValue("Assignments", "C2")
	require.NoError(t, err)
	assert.Equal(t, "h-1", id)
}

func TestImports_History(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	logID, err := env.store.CreateImportLog("a.xlsx", "/tmp/a.xlsx", 10, "")
	require.NoError(t, err)
	require.NoError(t, env.store.InsertSheetMeta(store.SheetMeta{
		ImportLogID:  logID,
		SheetName:    "Arrivals",
		SheetType:    "arrivals",
		Confidence:   0.8,
		ImportedRows: 3,
		Columns:      []string{"groupName", "hotel"},
		Status:       "imported",
	}))

	w := env.do(t, http.MethodGet, "/api/imports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs struct {
		Items []store.ImportLog `json:"items"`
	}
	decode(t, w, &logs)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, "a.xlsx", logs.Items[0].Filename)

	w = env.do(t, http.MethodGet, "/api/imports/"+strconv.FormatInt(logID, 10)+"/sheets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sheets struct {
		Items []store.SheetMeta `json:"items"`
	}
	decode(t, w, &sheets)
	require.Len(t, sheets.Items, 1)
	assert.Equal(t, []string{"groupName", "hotel"}, sheets.Items[0].Columns)

	w = env.do(t, http.MethodGet, "/api/imports/abc/sheets", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
