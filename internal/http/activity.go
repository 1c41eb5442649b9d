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

// ActivityStore defines progress store operations for streak tracking.
type ActivityStore interface {
	RecordActivity(accountID uint, day time.Time) (progress.Streak, error)
	Get(accountID uint) (*progress.Record, error)
}

type ActivityController struct {
	store   ActivityStore
	auditor *audit.Auditor
}

func NewActivityController(store ActivityStore, auditor *audit.Auditor) *ActivityController {
	return &ActivityController{store: store, auditor: auditor}
}

type recordActivityRequest struct {
	Date string `json:"date"`
}

// RecordActivity marks a calendar day as a reading day and returns the
// updated streak. The date field is optional and defaults to today.
// POST /api/activity
func (ac *ActivityController) RecordActivity(c *gin.Context) {
	userID := GetUserID(c)

	day := time.Now()

	var req recordActivityRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}
	if req.Date != "" {
		parsed, err := time.Parse(progress.DateLayout, req.Date)
		if err != nil {
			respondBadRequest(c, "date must be formatted as YYYY-MM-DD")
			return
		}
		day = parsed
	}

	streak, err := ac.store.RecordActivity(userID, day)
	if err != nil {
		if errors.Is(err, progress.ErrWriteConflict) {
			respondConflict(c, "concurrent update, retry the request", "write_conflict")
			return
		}
		respondInternalError(c, err, "record activity")
		return
	}

	if ac.auditor != nil {
		if _, err := ac.auditor.Record(audit.Event{
			Type:      audit.EventActivityRecord,
			AccountID: userID,
			Detail:    day.Format(progress.DateLayout),
		}); err != nil {
			log.Printf("Failed to record audit event %s: %v", audit.EventActivityRecord, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

// GetStreak returns the account's current streak without recording activity.
// GET /api/activity
func (ac *ActivityController) GetStreak(c *gin.Context) {
	userID := GetUserID(c)

	record, err := ac.store.Get(userID)
	if err != nil {
		respondInternalError(c, err, "get streak")
		return
	}

	c.JSON(http.StatusOK, gin.H{"streak": record.Streak})
}
