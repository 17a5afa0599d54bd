package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
)

// bookingJSON is one element of the aggregated bookings column.
type bookingJSON struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status"`
}

func scanItem(row pgx.Row) (catalog.Item, error) {
	var it catalog.Item
	var condition string
	var bookings []byte

	if err := row.Scan(
		&it.ID, &it.Title, &it.Description, &it.DailyPrice, &it.WeeklyPrice, &it.MonthlyPrice,
		&it.Category, &it.Brand, &it.Model, &condition, &it.City, &it.State,
		&it.Rating, &it.ReviewCount, &it.CreatedAt, &it.UpdatedAt,
		&it.Owner.ID, &it.Owner.Name,
		&bookings,
	); err != nil {
		return catalog.Item{}, err
	}
	it.Condition = catalog.Condition(condition)

	parsed, err := decodeBookings(bookings)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("item %s: %w", it.ID, err)
	}
	it.Bookings = parsed
	return it, nil
}

func decodeBookings(data []byte) ([]catalog.Booking, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw []bookingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]catalog.Booking, len(raw))
	for i, b := range raw {
		out[i] = catalog.Booking{Start: b.Start, End: b.End, Status: catalog.BookingStatus(b.Status)}
	}
	return out, nil
}
