// Package store defines the persistence contract behind the items API.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/idilsaglam/items/internal/model"
)

// TimeLayout is how created_at goes out on the wire: RFC 3339 in UTC with
// microseconds, so clients can convert to their own zone.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store persists items. List returns newest first.
type Store interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, in model.NewItem) (model.Item, error)
	// Delete reports whether a row was removed; a missing id is not an error.
	Delete(ctx context.Context, id int64) (bool, error)
	Close() error
}

// Record is the stored shape shared by the backends.
type Record struct {
	ID          int64     `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Item converts a record to its wire form.
func (r Record) Item() model.Item {
	return model.Item{
		ID:          model.IntID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   model.Timestamp(FormatTime(r.CreatedAt)),
	}
}

// FormatTime renders t with TimeLayout in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// SortNewestFirst orders by created_at descending, id descending on ties.
func SortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID > recs[j].ID
	})
}

// Items converts records in order.
func Items(recs []Record) []model.Item {
	out := make([]model.Item, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Item())
	}
	return out
}
