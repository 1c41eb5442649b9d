package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmate/shelfmate/internal/audit"
	"github.com/shelfmate/shelfmate/internal/progress"
)

// FavouritesStore defines progress store operations for favourites management.
type FavouritesStore interface {
	AddFavorite(accountID uint, bookID string) (bool, error)
	RemoveFavorite(accountID uint, bookID string) error
	Get(accountID uint) (*progress.Record, error)
}

type FavouritesController struct {
	store   FavouritesStore
	auditor *audit.Auditor
}

func NewFavouritesController(store FavouritesStore, auditor *audit.Auditor) *FavouritesController {
	return &FavouritesController{store: store, auditor: auditor}
}

// ListFavourites returns the account's favourite book IDs in insertion order.
// GET /api/favourites
func (fc *FavouritesController) ListFavourites(c *gin.Context) {
	userID := GetUserID(c)

	record, err := fc.store.Get(userID)
	if err != nil {
		respondInternalError(c, err, "list favourites")
		return
	}

	favorites := record.Favorites
	if favorites == nil {
		favorites = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"favourites": favorites,
		"total":      len(favorites),
	})
}

// AddFavourite adds a book to the account's favourites.
// Adding a book that is already a favourite is a no-op.
// POST /api/favourites/:bookId
func (fc *FavouritesController) AddFavourite(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	userID := GetUserID(c)

	added, err := fc.store.AddFavorite(userID, bookID)
	if err != nil {
		if errors.Is(err, progress.ErrBookIDRequired) {
			respondBadRequest(c, "bookId is required")
			return
		}
		if errors.Is(err, progress.ErrWriteConflict) {
			respondConflict(c, "concurrent update, retry the request", "write_conflict")
			return
		}
		respondInternalError(c, err, "add favourite")
		return
	}

	fc.recordAudit(audit.EventFavoriteAdd, userID, bookID)

	if !added {
		c.JSON(http.StatusOK, gin.H{"message": "already a favourite", "book_id": bookID})
		return
	}

	respondCreated(c, gin.H{"message": "favourite added", "book_id": bookID})
}

// RemoveFavourite removes a book from the account's favourites.
// DELETE /api/favourites/:bookId
func (fc *FavouritesController) RemoveFavourite(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	userID := GetUserID(c)

	if err := fc.store.RemoveFavorite(userID, bookID); err != nil {
		if errors.Is(err, progress.ErrFavoriteNotFound) {
			respondNotFound(c, "favourite not found", "favorite_not_found")
			return
		}
		if errors.Is(err, progress.ErrWriteConflict) {
			respondConflict(c, "concurrent update, retry the request", "write_conflict")
			return
		}
		respondInternalError(c, err, "remove favourite")
		return
	}

	fc.recordAudit(audit.EventFavoriteRemove, userID, bookID)

	c.JSON(http.StatusOK, gin.H{"message": "favourite removed", "book_id": bookID})
}

func (fc *FavouritesController) recordAudit(eventType string, userID uint, bookID string) {
	if fc.auditor == nil {
		return
	}
	if _, err := fc.auditor.Record(audit.Event{
		Type:      eventType,
		AccountID: userID,
		Detail:    bookID,
	}); err != nil {
		log.Printf("Failed to record audit event %s: %v", eventType, err)
	}
}
