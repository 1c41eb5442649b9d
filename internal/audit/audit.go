package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Event types recorded in the audit trail.
const (
	EventRegister       = "account.register"
	EventLogin          = "account.login"
	EventLoginFailed    = "account.login_failed"
	EventLogout         = "account.logout"
	EventPasswordChange = "account.password_change"
	EventAccountDelete  = "account.delete"
	EventTokenGenerate  = "token.generate"
	EventTokenRevoke    = "token.revoke"
	EventFavoriteAdd    = "favorite.add"
	EventFavoriteRemove = "favorite.remove"
	EventBookmarkUpdate = "bookmark.update"
	EventNoteAdd        = "note.add"
	EventActivityRecord = "activity.record"
)

// Event is a single audit record written to disk.
type Event struct {
	Type      string    `json:"type"`
	AccountID uint      `json:"account_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// Record writes an audit event to a file with a UUID4 filename.
// The event timestamp is stamped here if unset.
func (a *Auditor) Record(event Event) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	auditID := uuid.New()
	filename := fmt.Sprintf("%s.json", auditID.String())
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	return filename, nil
}

// Cleanup removes audit files older than the retention period.
// Returns the number of files removed.
func (a *Auditor) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(a.AuditDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read audit directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(a.AuditDir, entry.Name())); err != nil {
			log.Printf("Failed to remove expired audit file %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	return removed, nil
}

// ensureAuditDir creates the audit directory if it doesn't exist
func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
