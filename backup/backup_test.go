package backup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efek0349/mesaitakip/ledger"
	"github.com/efek0349/mesaitakip/models"
)

type memStore struct {
	data models.MonthlyData
}

func (m *memStore) LoadLedger(context.Context) (models.MonthlyData, error) {
	if m.data == nil {
		return models.MonthlyData{}, nil
	}
	return m.data.Clone(), nil
}

func (m *memStore) SaveLedger(_ context.Context, data models.MonthlyData) error {
	m.data = data.Clone()
	return nil
}

func openLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(context.Background(), &memStore{}, ledger.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestExport_RoundTrip(t *testing.T) {
	data := models.Group([]models.OvertimeEntry{
		models.NewOvertimeEntry(models.NewDate(2025, time.March, 3), 2, 30, "stock count"),
		models.NewOvertimeEntry(models.NewDate(2025, time.March, 1), 1, 0, ""),
		models.NewOvertimeEntry(models.NewDate(2025, time.April, 7), 0, 45, ""),
	})

	out, err := Export(data)
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n  \"2025-03\": [\n")
	assert.NotContains(t, string(out), `"note": ""`)

	decoded, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestExport_Empty(t *testing.T) {
	out, err := Export(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestExportMonth(t *testing.T) {
	data := models.Group([]models.OvertimeEntry{
		models.NewOvertimeEntry(models.NewDate(2025, time.March, 3), 2, 0, ""),
		models.NewOvertimeEntry(models.NewDate(2025, time.April, 7), 1, 0, ""),
	})

	out, err := ExportMonth(data, 2025, time.April)
	require.NoError(t, err)

	var got map[string][]map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	require.Len(t, got, 1)
	require.Len(t, got["2025-04"], 1)
	assert.Equal(t, "2025-04-07", got["2025-04"][0]["date"])

	out, err = ExportMonth(data, 2025, time.May)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025-05": []}`, string(out))
}

func TestDecode_RecomputesTotalHours(t *testing.T) {
	text := `{"2025-03": [{"id": "a", "date": "2025-03-03", "hours": 2, "minutes": 30, "totalHours": 99}]}`

	data, err := Decode([]byte(text))
	require.NoError(t, err)
	require.Len(t, data["2025-03"], 1)
	assert.Equal(t, 2.5, data["2025-03"][0].TotalHours)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field string
	}{
		{name: "not json", text: `{"2025-03": [`},
		{name: "null", text: `null`},
		{name: "array", text: `[]`},
		{name: "bad month key", text: `{"2025-3": []}`},
		{name: "month not a list", text: `{"2025-03": {"id": "a"}}`},
		{name: "month null", text: `{"2025-03": null}`},
		{name: "missing id", text: `{"2025-03": [{"date": "2025-03-03", "hours": 1, "minutes": 0, "totalHours": 1}]}`, field: "id"},
		{name: "missing minutes", text: `{"2025-03": [{"id": "a", "date": "2025-03-03", "hours": 1, "totalHours": 1}]}`, field: "minutes"},
		{name: "bad date", text: `{"2025-03": [{"id": "a", "date": "03/03/2025", "hours": 1, "minutes": 0, "totalHours": 1}]}`, field: "date"},
		{name: "date outside month", text: `{"2025-03": [{"id": "a", "date": "2025-04-03", "hours": 1, "minutes": 0, "totalHours": 1}]}`, field: "date"},
		{name: "hours out of range", text: `{"2025-03": [{"id": "a", "date": "2025-03-03", "hours": 24, "minutes": 0, "totalHours": 24}]}`, field: "hours"},
		{name: "minutes out of range", text: `{"2025-03": [{"id": "a", "date": "2025-03-03", "hours": 1, "minutes": 60, "totalHours": 2}]}`, field: "minutes"},
		{name: "hours as text", text: `{"2025-03": [{"id": "a", "date": "2025-03-03", "hours": "1", "minutes": 0, "totalHours": 1}]}`},
		{name: "entry null", text: `{"2025-03": [null]}`, field: "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.text))
			require.ErrorIs(t, err, ErrMalformed)
			if tt.field != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
				assert.Equal(t, "2025-03", verr.MonthKey)
				assert.Equal(t, 0, verr.Index)
			}
		})
	}
}

func TestImport_Merges(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t)

	_, err := l.Upsert(ctx, models.NewDate(2025, time.March, 3), 1, 0, "local")
	require.NoError(t, err)
	kept, err := l.Upsert(ctx, models.NewDate(2025, time.March, 4), 2, 0, "kept")
	require.NoError(t, err)

	text := `{
  "2025-03": [{"id": "imported", "date": "2025-03-03", "hours": 4, "minutes": 15, "totalHours": 4.25, "note": "from phone"}],
  "2025-05": [{"id": "may", "date": "2025-05-01", "hours": 1, "minutes": 0, "totalHours": 1}]
}`
	n, err := Import(ctx, []byte(text), l)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, ok := l.EntryFor(models.NewDate(2025, time.March, 3))
	require.True(t, ok)
	assert.Equal(t, "imported", got.ID)
	assert.Equal(t, "from phone", got.Note)

	got, ok = l.EntryFor(models.NewDate(2025, time.March, 4))
	require.True(t, ok)
	assert.Equal(t, kept, got)

	assert.Equal(t, []string{"2025-03", "2025-05"}, l.MonthKeys())
}

func TestImport_MalformedLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t)

	_, err := l.Upsert(ctx, models.NewDate(2025, time.March, 3), 1, 0, "local")
	require.NoError(t, err)
	before := l.Snapshot()

	text := `{
  "2025-03": [{"id": "ok", "date": "2025-03-05", "hours": 1, "minutes": 0, "totalHours": 1}],
  "2025-04": [{"id": "bad", "date": "2025-04-05", "hours": 30, "minutes": 0, "totalHours": 30}]
}`
	n, err := Import(ctx, []byte(text), l)

	require.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, 0, n)
	assert.Equal(t, before, l.Snapshot())
}

func TestImport_ExportedLedgerReimportsIdentically(t *testing.T) {
	ctx := context.Background()
	src := openLedger(t)
	for d := 1; d <= 5; d++ {
		_, err := src.Upsert(ctx, models.NewDate(2025, time.June, d), d, d*5, "")
		require.NoError(t, err)
	}

	out, err := Export(src.Snapshot())
	require.NoError(t, err)

	dst := openLedger(t)
	n, err := Import(ctx, out, dst)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, src.Snapshot(), dst.Snapshot())
}
