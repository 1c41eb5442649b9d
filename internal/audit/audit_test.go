package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditor(t *testing.T) {
	tempDir := t.TempDir()
	auditor := NewAuditor(tempDir)

	t.Run("Record creates audit directory and saves file", func(t *testing.T) {
		filename, err := auditor.Record(Event{
			Type:      EventLogin,
			AccountID: 7,
			Username:  "reader",
			ClientIP:  "192.0.2.1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, filename)
		assert.Contains(t, filename, ".json")

		filePath := filepath.Join(tempDir, filename)
		fileContent, err := os.ReadFile(filePath)
		require.NoError(t, err)

		var saved Event
		err = json.Unmarshal(fileContent, &saved)
		require.NoError(t, err)

		assert.Equal(t, EventLogin, saved.Type)
		assert.Equal(t, uint(7), saved.AccountID)
		assert.Equal(t, "reader", saved.Username)
		assert.False(t, saved.Timestamp.IsZero(), "timestamp should be stamped on write")
	})

	t.Run("Record generates unique filenames", func(t *testing.T) {
		filename1, err := auditor.Record(Event{Type: EventLogout})
		require.NoError(t, err)

		filename2, err := auditor.Record(Event{Type: EventLogout})
		require.NoError(t, err)

		assert.NotEqual(t, filename1, filename2)
	})

	t.Run("Record preserves an explicit timestamp", func(t *testing.T) {
		stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		filename, err := auditor.Record(Event{Type: EventRegister, Timestamp: stamp})
		require.NoError(t, err)

		fileContent, err := os.ReadFile(filepath.Join(tempDir, filename))
		require.NoError(t, err)

		var saved Event
		require.NoError(t, json.Unmarshal(fileContent, &saved))
		assert.True(t, saved.Timestamp.Equal(stamp))
	})
}

func TestAuditor_Cleanup(t *testing.T) {
	tempDir := t.TempDir()
	auditor := NewAuditor(tempDir)

	filename, err := auditor.Record(Event{Type: EventLogin})
	require.NoError(t, err)

	// Age the file past the retention window
	old := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(filepath.Join(tempDir, filename), old, old))

	recent, err := auditor.Record(Event{Type: EventLogout})
	require.NoError(t, err)

	removed, err := auditor.Cleanup(7)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(tempDir, filename))
	assert.True(t, os.IsNotExist(err), "expired file should be removed")

	_, err = os.Stat(filepath.Join(tempDir, recent))
	assert.NoError(t, err, "recent file should survive cleanup")
}

func TestAuditor_CleanupMissingDir(t *testing.T) {
	auditor := NewAuditor(filepath.Join(t.TempDir(), "never-created"))

	removed, err := auditor.Cleanup(7)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestAuditor_CleanupDisabled(t *testing.T) {
	tempDir := t.TempDir()
	auditor := NewAuditor(tempDir)

	filename, err := auditor.Record(Event{Type: EventLogin})
	require.NoError(t, err)

	old := time.Now().AddDate(0, 0, -365)
	require.NoError(t, os.Chtimes(filepath.Join(tempDir, filename), old, old))

	// Zero retention means keep everything
	removed, err := auditor.Cleanup(0)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = os.Stat(filepath.Join(tempDir, filename))
	assert.NoError(t, err)
}
