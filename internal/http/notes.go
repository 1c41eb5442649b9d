package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmate/shelfmate/internal/audit"
	"github.com/shelfmate/shelfmate/internal/progress"
)

// NotesStore defines progress store operations for learning notes.
type NotesStore interface {
	AddNote(accountID uint, bookID, text string) (progress.Note, error)
	Get(accountID uint) (*progress.Record, error)
}

type NotesController struct {
	store   NotesStore
	auditor *audit.Auditor
}

func NewNotesController(store NotesStore, auditor *audit.Auditor) *NotesController {
	return &NotesController{store: store, auditor: auditor}
}

type addNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddNote appends a learning note for a book. Notes are append-only;
// existing notes are never overwritten.
// POST /api/notes/:bookId
func (nc *NotesController) AddNote(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	userID := GetUserID(c)

	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	note, err := nc.store.AddNote(userID, bookID, req.Text)
	if err != nil {
		if errors.Is(err, progress.ErrNoteTextRequired) {
			respondBadRequest(c, "text is required")
			return
		}
		if errors.Is(err, progress.ErrWriteConflict) {
			respondConflict(c, "concurrent update, retry the request", "write_conflict")
			return
		}
		respondInternalError(c, err, "add note")
		return
	}

	if nc.auditor != nil {
		if _, err := nc.auditor.Record(audit.Event{
			Type:      audit.EventNoteAdd,
			AccountID: userID,
			Detail:    bookID,
		}); err != nil {
			log.Printf("Failed to record audit event %s: %v", audit.EventNoteAdd, err)
		}
	}

	respondCreated(c, note)
}

// ListNotes returns all learning notes for the account, oldest first.
// GET /api/notes
func (nc *NotesController) ListNotes(c *gin.Context) {
	userID := GetUserID(c)

	record, err := nc.store.Get(userID)
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}

	notes := record.Notes
	if notes == nil {
		notes = []progress.Note{}
	}

	c.JSON(http.StatusOK, gin.H{
		"notes": notes,
		"total": len(notes),
	})
}
