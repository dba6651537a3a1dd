// internal/vacancy/apollo/importer_test.go
package apollo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vacancy-workers/internal/models"
	"vacancy-workers/internal/vacancy"
)

var (
	vacancyStart = models.MustParseDate("2025-09-24")
	targetMoveIn = vacancyStart.AddDays(14)
)

func taskStatus(t *testing.T, instance *vacancy.WorkflowInstance, key string) vacancy.TaskInstance {
	t.Helper()
	task, ok := instance.Task(key)
	require.True(t, ok, "task %s present", key)
	return task
}

func TestImportCSVMarksCompletedAndInProgress(t *testing.T) {
	csv := "Task ID,Created At,Completed At,Last Modified,Name\n" +
		"1,2025-09-24T10:00:00Z,2025-09-25T12:15:00Z,2025-09-25T12:15:00Z,Create and Publish Listing - Leasing Agent\n" +
		"2,2025-09-24T11:00:00Z,,2025-09-24T18:00:00Z,Update Vacancy in AppFolio - Leasing Agent\n" +
		"3,2025-09-24T11:00:00Z,,2025-09-24T11:00:00Z,Process Rental Applications\n"

	instance, err := ImportCSV(strings.NewReader(csv), vacancyStart, targetMoveIn)
	require.NoError(t, err)

	listing := taskStatus(t, instance, "marketing_publish_listing")
	assert.Equal(t, vacancy.StatusCompleted, listing.Status)
	require.NotNil(t, listing.CompletedOn)
	assert.Equal(t, "2025-09-25", listing.CompletedOn.String())

	appfolio := taskStatus(t, instance, "marketing_update_appfolio")
	assert.Equal(t, vacancy.StatusInProgress, appfolio.Status)
	assert.Nil(t, appfolio.CompletedOn)

	untouched := taskStatus(t, instance, "screening_process_applications")
	assert.Equal(t, vacancy.StatusNotStarted, untouched.Status)
}

func TestImportCSVFirstRowWins(t *testing.T) {
	csv := "Name,Created At,Completed At,Last Modified\n" +
		"Create and Publish Listing - Leasing Agent,2025-09-24T10:00:00Z,2025-09-25T12:00:00Z,2025-09-25T12:00:00Z\n" +
		"Create and Publish Listing - Leasing Agent,2025-09-24T11:00:00Z,,2025-09-24T12:30:00Z\n"

	instance, err := ImportCSV(strings.NewReader(csv), vacancyStart, targetMoveIn)
	require.NoError(t, err)

	assert.Equal(t, vacancy.StatusCompleted, taskStatus(t, instance, "marketing_publish_listing").Status)
}

func TestImportCSVUntouchedRowDoesNotClaimKey(t *testing.T) {
	csv := "Name,Created At,Completed At,Last Modified\n" +
		"Collect Funds,2025-09-24T10:00:00Z,,\n" +
		"Collect Move-In Funds,,2025-10-05,\n"

	instance, err := ImportCSV(strings.NewReader(csv), vacancyStart, targetMoveIn)
	require.NoError(t, err)

	task := taskStatus(t, instance, "leasing_collect_funds")
	assert.Equal(t, vacancy.StatusCompleted, task.Status)
	assert.Equal(t, "2025-10-05", task.CompletedOn.String())
}

func TestImportCSVIgnoresUnknownNames(t *testing.T) {
	csv := "Name,Created At,Completed At,Last Modified\nUnknown Task,2025-09-24T10:00:00Z,,2025-09-24T12:00:00Z\n"

	instance, err := ImportCSV(strings.NewReader(csv), vacancyStart, targetMoveIn)
	require.NoError(t, err)

	for _, task := range instance.Tasks() {
		assert.Equal(t, vacancy.StatusNotStarted, task.Status)
	}
}

func TestImportCSVErrors(t *testing.T) {
	t.Run("missing name column", func(t *testing.T) {
		_, err := ImportCSV(strings.NewReader("Title,Created At\nfoo,bar\n"), vacancyStart, targetMoveIn)
		require.Error(t, err)

		var importErr *ImportError
		require.True(t, errors.As(err, &importErr))
		assert.Equal(t, OpParse, importErr.Op)
		assert.True(t, errors.Is(err, ErrMissingNameColumn))
		assert.Contains(t, err.Error(), "invalid Apollo CSV data")
	})

	t.Run("malformed quoting", func(t *testing.T) {
		_, err := ImportCSV(strings.NewReader("Name\n\"unterminated\n"), vacancyStart, targetMoveIn)
		require.Error(t, err)

		var importErr *ImportError
		require.True(t, errors.As(err, &importErr))
		assert.Equal(t, OpParse, importErr.Op)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ImportFile("./does-not-exist.csv", vacancyStart, targetMoveIn)
		require.Error(t, err)

		var importErr *ImportError
		require.True(t, errors.As(err, &importErr))
		assert.Equal(t, OpRead, importErr.Op)
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.Contains(t, err.Error(), "failed to read Apollo export")
	})
}

func TestImportXLSX(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetList()[0]
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Created At", "Completed At", "Last Modified"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]interface{}{"Finalize TIC", "2025-10-01", "2025-10-09", ""}))
	require.NoError(t, book.SetSheetRow(sheet, "A3", &[]interface{}{"Sign new leases", "2025-09-28T09:00:00Z", "", "2025-09-29T09:00:00Z"}))

	path := filepath.Join(t.TempDir(), "apollo.xlsx")
	require.NoError(t, book.SaveAs(path))

	instance, err := ImportFile(path, vacancyStart, targetMoveIn)
	require.NoError(t, err)

	lihtc := taskStatus(t, instance, "leasing_lihtc_certification")
	assert.Equal(t, vacancy.StatusCompleted, lihtc.Status)
	assert.Equal(t, "2025-10-09", lihtc.CompletedOn.String())
	assert.Equal(t, vacancy.StatusInProgress, taskStatus(t, instance, "leasing_prepare_agreement").Status)
}

func TestNormalizeName(t *testing.T) {
	source := "\ufeffCreate  and  Publish\u200b  Listing  -  Leasing  Agent"
	assert.Equal(t, "create and publish listing - leasing agent", normalizeName(source))
}

func TestTaskKeyFor(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"Create and Publish Listing – Leasing Agent", "marketing_publish_listing"},
		{"MANAGE INQUIRIES & SCHEDULE SHOWINGS - LEASING AGENT", "screening_manage_inquiries"},
		{"Collect Funds - PM/Accounting", "leasing_collect_funds"},
		{"Hand Over Keys and Welcome Tenant - Leasing Agent", "handoff_start_new_resident_workflow"},
		{"Update the unit's status in AppFolio from \"Vacant\" to \"Occupied.\"", "handoff_start_new_resident_workflow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := TaskKeyFor(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.key, key)
		})
	}

	_, ok := TaskKeyFor("Paint the lobby")
	assert.False(t, ok)
}

func TestAliasesTargetCatalogKeys(t *testing.T) {
	catalog := vacancy.StandardCatalog()
	for _, alias := range nameAliases {
		_, ok := catalog.Lookup(alias.key)
		assert.True(t, ok, "alias %q targets unknown key %s", alias.name, alias.key)
	}
}

func TestParseTimestamp(t *testing.T) {
	rfc, ok := parseTimestamp("2025-09-24T10:00:00-05:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 9, 24, 15, 0, 0, 0, time.UTC), rfc)

	day, ok := parseTimestamp("2025-09-30")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), day)

	_, ok = parseTimestamp("  ")
	assert.False(t, ok)
	_, ok = parseTimestamp("not-a-date")
	assert.False(t, ok)
}
