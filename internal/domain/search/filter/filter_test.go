package filter

import (
	"testing"
	"time"

	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
)

func fp(f float64) *float64 { return &f }

func day(n int) time.Time {
	return time.Date(2025, time.March, n, 0, 0, 0, 0, time.UTC)
}

func mustWindow(t *testing.T, from, to time.Time) *Window {
	t.Helper()
	w, err := NewWindow(from, to)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	return &w
}

func mustPrice(t *testing.T, minPrice, maxPrice *float64) PriceRange {
	t.Helper()
	r, err := NewPriceRange(minPrice, maxPrice)
	if err != nil {
		t.Fatalf("NewPriceRange: %v", err)
	}
	return r
}

func TestNewPriceRange_Validation(t *testing.T) {
	tests := []struct {
		name     string
		min, max *float64
		wantErr  bool
	}{
		{"both nil", nil, nil, false},
		{"min only", fp(10), nil, false},
		{"max only", nil, fp(10), false},
		{"equal", fp(10), fp(10), false},
		{"min above max", fp(20), fp(10), true},
		{"negative min", fp(-1), nil, true},
		{"negative max", nil, fp(-1), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPriceRange(tc.min, tc.max)
			if (err != nil) != tc.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestPriceRange_ContainsInclusive(t *testing.T) {
	r := mustPrice(t, fp(10), fp(20))
	for _, p := range []float64{10, 15, 20} {
		if !r.Contains(p) {
			t.Errorf("Contains(%v) = false, want true", p)
		}
	}
	for _, p := range []float64{9.99, 20.01} {
		if r.Contains(p) {
			t.Errorf("Contains(%v) = true, want false", p)
		}
	}
	if !(PriceRange{}).Contains(1e9) {
		t.Error("empty range must contain everything")
	}
}

func TestNewWindow_Validation(t *testing.T) {
	if _, err := NewWindow(day(5), day(5)); err == nil {
		t.Error("expected error for start == end")
	}
	if _, err := NewWindow(day(6), day(5)); err == nil {
		t.Error("expected error for start > end")
	}
	if _, err := NewWindow(time.Time{}, day(5)); err == nil {
		t.Error("expected error for missing start")
	}
	if _, err := NewWindow(day(1), day(2)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	existing := catalog.Booking{Start: day(10), End: day(20), Status: catalog.BookingApproved}
	tests := []struct {
		name     string
		from, to time.Time
		want     bool
	}{
		{"starts inside", day(15), day(25), true},
		{"ends inside", day(5), day(12), true},
		{"contains existing", day(5), day(25), true},
		{"inside existing", day(12), day(15), true},
		{"touches start", day(5), day(10), true},
		{"touches end", day(20), day(22), true},
		{"before", day(1), day(9), false},
		{"after", day(21), day(25), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.from, tc.to, existing); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWindowBlocked_OnlyActiveBookings(t *testing.T) {
	w := mustWindow(t, day(12), day(15))
	tests := []struct {
		status catalog.BookingStatus
		want   bool
	}{
		{catalog.BookingApproved, true},
		{catalog.BookingPending, true},
		{catalog.BookingRejected, false},
		{catalog.BookingCancelled, false},
		{catalog.BookingCompleted, false},
	}
	for _, tc := range tests {
		bookings := []catalog.Booking{{Start: day(10), End: day(20), Status: tc.status}}
		if got := w.Blocked(bookings); got != tc.want {
			t.Errorf("status %q: Blocked = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestSpecMatches(t *testing.T) {
	item := catalog.Item{
		ID:         "1",
		Title:      "Canon EOS R5",
		DailyPrice: 50,
		Category:   "cameras",
		Condition:  catalog.ConditionLikeNew,
		City:       "San Francisco",
		State:      "CA",
		Bookings: []catalog.Booking{
			{Start: day(10), End: day(20), Status: catalog.BookingApproved},
		},
	}

	tests := []struct {
		name string
		spec Spec
		want bool
	}{
		{"empty", Spec{}, true},
		{"price in range", New("", "", "", "", "", mustPrice(t, fp(40), fp(60)), nil), true},
		{"price below min", New("", "", "", "", "", mustPrice(t, fp(51), nil), nil), false},
		{"price above max", New("", "", "", "", "", mustPrice(t, nil, fp(49)), nil), false},
		{"category equal", New("", "cameras", "", "", "", PriceRange{}, nil), true},
		{"category differs", New("", "lenses", "", "", "", PriceRange{}, nil), false},
		{"condition equal", New("", "", catalog.ConditionLikeNew, "", "", PriceRange{}, nil), true},
		{"condition differs", New("", "", catalog.ConditionNew, "", "", PriceRange{}, nil), false},
		{"city substring any case", New("", "", "", "san fran", "", PriceRange{}, nil), true},
		{"city mismatch", New("", "", "", "oakland", "", PriceRange{}, nil), false},
		{"state substring", New("", "", "", "", "ca", PriceRange{}, nil), true},
		{"window blocked", New("", "", "", "", "", PriceRange{}, mustWindow(t, day(12), day(15))), false},
		{"window free", New("", "", "", "", "", PriceRange{}, mustWindow(t, day(21), day(25))), true},
		{"text ignored", New("nikon", "", "", "", "", PriceRange{}, nil), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.spec.Matches(&item); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSpecMatchesText(t *testing.T) {
	item := catalog.Item{
		ID:          "1",
		Title:       "Mountain Bike",
		Description: "Full suspension",
		Brand:       "Trek",
		Model:       "Fuel EX",
	}
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"mountain", true},
		{"SUSPENSION", true},
		{"trek", true},
		{"fuel ex", true},
		{"road", false},
	}
	for _, tc := range tests {
		s := New(tc.text, "", "", "", "", PriceRange{}, nil)
		if got := s.MatchesText(&item); got != tc.want {
			t.Errorf("MatchesText(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestSpecWithoutText(t *testing.T) {
	s := New("canon", "cameras", "", "", "", PriceRange{}, nil)
	if !s.HasText() {
		t.Fatal("expected text")
	}
	st := s.WithoutText()
	if st.HasText() {
		t.Error("WithoutText must clear the text predicate")
	}
	if st.Category() != "cameras" {
		t.Errorf("category lost: %q", st.Category())
	}
	if s.Text() != "canon" {
		t.Error("WithoutText must not mutate the receiver")
	}
}
