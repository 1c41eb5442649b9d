package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmate/shelfmate/internal/progress"
)

// DashboardStore defines the read operation backing the dashboard.
type DashboardStore interface {
	Get(accountID uint) (*progress.Record, error)
}

type DashboardController struct {
	store DashboardStore
}

func NewDashboardController(store DashboardStore) *DashboardController {
	return &DashboardController{store: store}
}

// DashboardResponse summarizes an account's reading state.
type DashboardResponse struct {
	Streak         progress.Streak `json:"streak"`
	FavouriteCount int             `json:"favourite_count"`
	BookmarkCount  int             `json:"bookmark_count"`
	NoteCount      int             `json:"note_count"`
}

// Dashboard returns the streak plus favourites/bookmarks/notes counts.
// GET /api/dashboard
func (dc *DashboardController) Dashboard(c *gin.Context) {
	userID := GetUserID(c)

	record, err := dc.store.Get(userID)
	if err != nil {
		respondInternalError(c, err, "dashboard")
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Streak:         record.Streak,
		FavouriteCount: len(record.Favorites),
		BookmarkCount:  len(record.Bookmarks),
		NoteCount:      len(record.Notes),
	})
}
