package catalog

import (
	"fmt"
	"time"
)

// Condition is the physical state of a listed item.
type Condition string

// Condition values.
const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// IsValid checks if the condition is one of the supported values.
func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

// BookingStatus values.
const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// BlocksAvailability reports whether a booking in this state reserves the item.
func (s BookingStatus) BlocksAvailability() bool {
	return s == BookingPending || s == BookingApproved
}

// Owner is the listing owner summary attached to every item.
type Owner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Booking is a rental window on an item.
type Booking struct {
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
}

// Item is one rentable listing. The search engine treats it as read-only.
type Item struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	DailyPrice   float64   `json:"dailyPrice"`
	WeeklyPrice  *float64  `json:"weeklyPrice,omitempty"`
	MonthlyPrice *float64  `json:"monthlyPrice,omitempty"`
	Category     string    `json:"category"`
	Brand        string    `json:"brand,omitempty"`
	Model        string    `json:"model,omitempty"`
	Condition    Condition `json:"condition"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Rating       *float64  `json:"averageRating,omitempty"`
	ReviewCount  int       `json:"reviewCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Owner        Owner     `json:"owner"`
	Bookings     []Booking `json:"bookings,omitempty"`
}

// RatingOrZero returns the average rating, treating an unrated item as 0.
func (it *Item) RatingOrZero() float64 {
	if it.Rating == nil {
		return 0
	}
	return *it.Rating
}

// Validate checks the record invariants: prices non-negative, rating within [0,5],
// review count non-negative.
func (it *Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("item ID is required")
	}
	if it.DailyPrice < 0 {
		return fmt.Errorf("item %s: daily price must be non-negative", it.ID)
	}
	if it.WeeklyPrice != nil && *it.WeeklyPrice < 0 {
		return fmt.Errorf("item %s: weekly price must be non-negative", it.ID)
	}
	if it.MonthlyPrice != nil && *it.MonthlyPrice < 0 {
		return fmt.Errorf("item %s: monthly price must be non-negative", it.ID)
	}
	if it.Rating != nil && (*it.Rating < 0 || *it.Rating > 5) {
		return fmt.Errorf("item %s: rating must be between 0 and 5", it.ID)
	}
	if it.ReviewCount < 0 {
		return fmt.Errorf("item %s: review count must be non-negative", it.ID)
	}
	if it.Condition != "" && !it.Condition.IsValid() {
		return fmt.Errorf("item %s: unknown condition %q", it.ID, it.Condition)
	}
	return nil
}
