package progress

import (
	"time"
)

// DateLayout is the calendar-day format used for streak accounting.
// Streaks are counted in whole days, so there is no time-of-day component
// and midnight rollover is a plain date comparison.
const DateLayout = "2006-01-02"

// Marker is a saved reading-progress position for one book.
type Marker struct {
	Page      int       `json:"page,omitempty"`
	Percent   float64   `json:"percent,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is a single learning note. Notes are append-only and never overwritten.
type Note struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Streak tracks consecutive-day reading activity.
type Streak struct {
	Current          int    `json:"current"`
	Longest          int    `json:"longest"`
	LastActivityDate string `json:"last_activity_date,omitempty"` // YYYY-MM-DD
}

// Record is the progress document for a single account. Exactly one record
// exists per account; it is created lazily on the first mutation.
type Record struct {
	AccountID uint              `json:"account_id"`
	Favorites []string          `json:"favorites"`
	Bookmarks map[string]Marker `json:"bookmarks"`
	Notes     []Note            `json:"notes"`
	Streak    Streak            `json:"streak"`

	// Version increments on every write and backs conflict detection.
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newRecord(accountID uint) *Record {
	return &Record{
		AccountID: accountID,
		Favorites: []string{},
		Bookmarks: make(map[string]Marker),
		Notes:     []Note{},
	}
}

// HasFavorite reports whether bookID is in the favorites list.
func (r *Record) HasFavorite(bookID string) bool {
	for _, id := range r.Favorites {
		if id == bookID {
			return true
		}
	}
	return false
}

// advance applies one day of activity to the streak:
//   - same date as the last activity: unchanged (repeated same-day calls are idempotent)
//   - exactly the next calendar day: current streak grows by one
//   - anything else (gap of more than one day, or a backdated entry): reset to 1
func (s *Streak) advance(day time.Time) {
	date := day.Format(DateLayout)

	if s.LastActivityDate == date {
		return
	}

	if last, err := time.Parse(DateLayout, s.LastActivityDate); err == nil &&
		last.AddDate(0, 0, 1).Format(DateLayout) == date {
		s.Current++
	} else {
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastActivityDate = date
}
