package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfmate/shelfmate/internal/audit"
	"github.com/shelfmate/shelfmate/internal/progress"
)

// BookmarksStore defines progress store operations for bookmark management.
type BookmarksStore interface {
	SetBookmark(accountID uint, bookID string, marker progress.Marker) error
	RecordActivity(accountID uint, day time.Time) (progress.Streak, error)
	Get(accountID uint) (*progress.Record, error)
}

type BookmarksController struct {
	store   BookmarksStore
	auditor *audit.Auditor
}

func NewBookmarksController(store BookmarksStore, auditor *audit.Auditor) *BookmarksController {
	return &BookmarksController{store: store, auditor: auditor}
}

type updateBookmarkRequest struct {
	Page    int     `json:"page" binding:"required"`
	Percent float64 `json:"percent"`
}

// UpdateBookmark sets the reading marker for a book and records today as a
// reading day. Updating the page you are on is what keeps the streak alive,
// so the two updates are coupled here.
// PUT /api/bookmarks/:bookId
func (bc *BookmarksController) UpdateBookmark(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	userID := GetUserID(c)

	var req updateBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "page is required")
		return
	}
	if req.Page < 1 {
		respondBadRequest(c, "page must be a positive number")
		return
	}
	if req.Percent < 0 || req.Percent > 100 {
		respondBadRequest(c, "percent must be between 0 and 100")
		return
	}

	marker := progress.Marker{
		Page:    req.Page,
		Percent: req.Percent,
	}

	if err := bc.store.SetBookmark(userID, bookID, marker); err != nil {
		if errors.Is(err, progress.ErrWriteConflict) {
			respondConflict(c, "concurrent update, retry the request", "write_conflict")
			return
		}
		respondInternalError(c, err, "update bookmark")
		return
	}

	streak, err := bc.store.RecordActivity(userID, time.Now())
	if err != nil {
		respondInternalError(c, err, "record reading activity")
		return
	}

	if bc.auditor != nil {
		if _, err := bc.auditor.Record(audit.Event{
			Type:      audit.EventBookmarkUpdate,
			AccountID: userID,
			Detail:    bookID,
		}); err != nil {
			log.Printf("Failed to record audit event %s: %v", audit.EventBookmarkUpdate, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "bookmark updated",
		"book_id": bookID,
		"page":    req.Page,
		"streak":  streak,
	})
}

// ListBookmarks returns all reading markers for the account.
// GET /api/bookmarks
func (bc *BookmarksController) ListBookmarks(c *gin.Context) {
	userID := GetUserID(c)

	record, err := bc.store.Get(userID)
	if err != nil {
		respondInternalError(c, err, "list bookmarks")
		return
	}

	bookmarks := record.Bookmarks
	if bookmarks == nil {
		bookmarks = map[string]progress.Marker{}
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmarks": bookmarks,
		"total":     len(bookmarks),
	})
}
