package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err, "init store")
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestAccommodations_KeepOrder(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	records := []model.AccommodationRecord{
		{ID: "z", Name: "Zeta", Location: "Makkah", Category: model.CategoryAccommodation},
		{ID: "a", Name: "Alpha", Location: "Makkah", Category: model.CategoryHotel, Capacity: 10},
		{ID: "m", Name: "Mina 1", Location: "Mina", Category: model.CategoryMinaTent},
	}
	require.NoError(t, st.ReplaceAccommodations(records))

	got, err := st.ListAccommodations()
	require.NoError(t, err)
	assert.Equal(t, records, got)

	// 再次替换应覆盖旧数据
	require.NoError(t, st.ReplaceAccommodations(records[:1]))
	n, err := st.CountAccommodations()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGroups_InsertGetReplaceConfirm(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	g := &model.PilgrimGroup{
		ID:            "g-1",
		GroupName:     "Group 1",
		OrganizerName: "Org A",
		Destination:   "Makkah",
		Movement:      model.MovementArrival,
		TotalPilgrims: 120,
		Source:        model.AllocationExplicit,
		Assignments: []model.ResolvedAssignment{
			{AccommodationID: "h-1", AccommodationName: "Hotel A", PilgrimsAssigned: 100, ContractNumber: "C-1"},
			{AccommodationName: "Hotel B", PilgrimsAssigned: 20},
		},
	}
	require.NoError(t, st.BatchInsertGroups([]*model.PilgrimGroup{g}))

	got, err := st.GetGroup("g-1")
	require.NoError(t, err)
	assert.Equal(t, model.GroupStatusDraft, got.Status)
	assert.Equal(t, g.Assignments, got.Assignments)
	assert.Equal(t, 120, got.AssignedPilgrims())

	replaced := []model.ResolvedAssignment{{AccommodationID: "h-2", AccommodationName: "Hotel B", PilgrimsAssigned: 120}}
	require.NoError(t, st.ReplaceAssignments("g-1", replaced))
	require.NoError(t, st.ConfirmGroup("g-1", time.Now()))

	got, err = st.GetGroup("g-1")
	require.NoError(t, err)
	assert.Equal(t, model.GroupStatusConfirmed, got.Status)
	assert.NotNil(t, got.ConfirmedAt)
	assert.Equal(t, replaced, got.Assignments)
}

func TestGroups_BatchInsertRollsBack(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	// 同一批次内 ID 重复，整批回滚
	err := st.BatchInsertGroups([]*model.PilgrimGroup{
		{ID: "dup", GroupName: "First", Assignments: []model.ResolvedAssignment{{AccommodationName: "Hotel A", PilgrimsAssigned: 5}}},
		{ID: "dup", GroupName: "Second"},
	})
	require.Error(t, err)

	n, err := st.CountGroups(GroupQueryOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)

	var assignments int
	require.NoError(t, st.db.QueryRow("SELECT COUNT(1) FROM group_assignments").Scan(&assignments))
	assert.Zero(t, assignments)
}

func TestGroups_DeleteAll(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	require.NoError(t, st.BatchInsertGroups([]*model.PilgrimGroup{
		{ID: "a", Assignments: []model.ResolvedAssignment{{AccommodationName: "Hotel A", PilgrimsAssigned: 1}}},
	}))
	require.NoError(t, st.DeleteAllGroups())

	n, err := st.CountGroups(GroupQueryOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGroups_NotFound(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	_, err := st.GetGroup("missing")
	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.ErrorIs(t, st.ReplaceAssignments("missing", nil), ErrGroupNotFound)
	assert.ErrorIs(t, st.ConfirmGroup("missing", time.Now()), ErrGroupNotFound)
}

func TestGroups_ListFilters(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	groups := []*model.PilgrimGroup{
		{ID: "a", GroupName: "Alpha", Destination: "Makkah", Movement: model.MovementArrival, RowNo: 2},
		{ID: "b", GroupName: "Beta", Destination: "Madinah", Movement: model.MovementDeparture, RowNo: 3},
		{ID: "c", GroupName: "Gamma", OrganizerName: "Alpha Tours", Destination: "makkah", Movement: model.MovementArrival, RowNo: 4},
	}
	require.NoError(t, st.BatchInsertGroups(groups))

	dest := "MAKKAH"
	got, err := st.ListGroups(GroupQueryOptions{Destination: &dest})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	mv := model.MovementDeparture
	n, err := st.CountGroups(GroupQueryOptions{Movement: &mv})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err = st.ListGroups(GroupQueryOptions{Keyword: "alpha"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = st.ListGroups(GroupQueryOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestConfig_SeasonAndImportTime(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	_, err := st.GetSeason()
	assert.Error(t, err, "season should be missing")

	require.NoError(t, st.SetSeason(1447))
	season, err := st.GetSeason()
	require.NoError(t, err)
	assert.Equal(t, 1447, season)

	assert.True(t, st.LastImportTime().IsZero())
	at := time.Date(2026, 5, 20, 8, 30, 0, 0, time.UTC)
	require.NoError(t, st.MarkImported(at))
	assert.True(t, st.LastImportTime().Equal(at))
}

func TestImportLog_CreateUpdateList(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	id, err := st.CreateImportLog("groups.xlsx", "/tmp/groups.xlsx", 1024, "abc")
	require.NoError(t, err)
	require.NoError(t, st.UpdateImportLog(id, 2, 1, 1, 10, 9, 1, "done", ""))

	logs, err := st.ListImportLogs(5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "done", logs[0].Status)
	assert.Equal(t, 9, logs[0].ImportedRows)
}

func TestSheetMeta_InsertList(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	logID, err := st.CreateImportLog("b.xlsx", "", 0, "")
	require.NoError(t, err)

	for _, m := range []SheetMeta{
		{ImportLogID: logID, SheetName: "Arrivals", SheetType: "arrivals", Confidence: 0.8, ImportedRows: 4, FallbackRows: 1, Columns: []string{"groupName"}, Status: "imported"},
		{ImportLogID: logID, SheetName: "Lookup", SheetType: "unknown", Status: "skipped", ErrorMessage: "无法识别 Sheet 类型"},
	} {
		require.NoError(t, st.InsertSheetMeta(m))
	}

	got, err := st.ListSheetMeta(logID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Arrivals", got[0].SheetName)
	assert.Equal(t, 1, got[0].FallbackRows)
	assert.Equal(t, []string{"groupName"}, got[0].Columns)
	assert.Equal(t, "skipped", got[1].Status)
	assert.NotNil(t, got[1].Columns)
	assert.Empty(t, got[1].Columns)

	other, err := st.ListSheetMeta(logID + 1)
	require.NoError(t, err)
	assert.Empty(t, other)
}
