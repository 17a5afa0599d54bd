//go:build postgres

package catalog

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kailas-cloud/rentdex/internal/db/postgres"
	domcat "github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/filter"
)

var testStore *postgres.Store

// TestMain uses DATABASE_URL when set, otherwise starts a disposable PostgreSQL container.
func TestMain(m *testing.M) {
	ctx := context.Background()

	var container testcontainers.Container
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		c, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("rentdex_test"),
			tcpostgres.WithUsername("rentdex"),
			tcpostgres.WithPassword("rentdex"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start PostgreSQL container: %v\n", err)
			os.Exit(1)
		}
		container = c

		dsn, err = c.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
			_ = c.Terminate(ctx)
			os.Exit(1)
		}
	}

	store, err := postgres.NewStore(ctx, postgres.Config{DSN: dsn, MaxConns: 4, MinConns: 1})
	if err == nil {
		err = store.WaitForReady(ctx, 30*time.Second)
	}
	if err == nil {
		_, err = store.Migrate(ctx)
	}
	if err == nil {
		err = seed(ctx, store)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare database: %v\n", err)
		if container != nil {
			_ = container.Terminate(ctx)
		}
		os.Exit(1)
	}
	testStore = store

	code := m.Run()

	store.Close()
	if container != nil {
		_ = container.Terminate(ctx)
	}
	os.Exit(code)
}

func seed(ctx context.Context, s *postgres.Store) error {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stmts := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO users (id, name) VALUES ('u1', 'Alice')`, nil},
		{`INSERT INTO items (id, owner_id, title, description, daily_price, category, brand, model, condition, city, state, average_rating, created_at, updated_at)
		  VALUES ('1', 'u1', 'Canon EOS R5', 'Full frame 100% mirrorless', 50, 'cameras', 'Canon', 'R5', 'like-new', 'San Francisco', 'CA', 4.8, $1, $1)`,
			[]any{base.Add(3 * time.Hour)}},
		{`INSERT INTO items (id, owner_id, title, description, daily_price, category, brand, condition, city, state, created_at, updated_at)
		  VALUES ('2', 'u1', 'Canon Rebel', 'Entry level DSLR', 30, 'cameras', 'Canon', 'good', 'Oakland', 'CA', $1, $1)`,
			[]any{base.Add(2 * time.Hour)}},
		{`INSERT INTO items (id, owner_id, title, description, daily_price, category, brand, condition, city, state, created_at, updated_at)
		  VALUES ('3', 'u1', 'Sony A7', 'Compact body', 60, 'cameras', 'Sony', 'good', 'Austin', 'TX', $1, $1)`,
			[]any{base.Add(time.Hour)}},
		{`INSERT INTO bookings (id, item_id, start_date, end_date, status) VALUES ('b1', '1', $1, $2, 'approved')`,
			[]any{day(10), day(20)}},
		{`INSERT INTO bookings (id, item_id, start_date, end_date, status) VALUES ('b2', '2', $1, $2, 'cancelled')`,
			[]any{day(10), day(20)}},
	}
	for _, st := range stmts {
		if _, err := s.Pool().Exec(ctx, st.sql, st.args...); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

func day(n int) time.Time {
	return time.Date(2025, time.March, n, 0, 0, 0, 0, time.UTC)
}

func itemIDs(items []domcat.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func TestPostgres_All(t *testing.T) {
	items, err := New(testStore.Pool()).All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := itemIDs(items)
	if fmt.Sprint(got) != "[1 2 3]" {
		t.Fatalf("got %v, want newest-first [1 2 3]", got)
	}
	if len(items[0].Bookings) != 1 || items[0].Bookings[0].Status != domcat.BookingApproved {
		t.Errorf("active bookings not aggregated: %+v", items[0].Bookings)
	}
	if len(items[1].Bookings) != 0 {
		t.Errorf("cancelled bookings must be omitted: %+v", items[1].Bookings)
	}
	if items[0].Owner.Name != "Alice" {
		t.Errorf("owner not joined: %+v", items[0].Owner)
	}
}

func TestPostgres_Query(t *testing.T) {
	max40, _ := filter.NewPriceRange(nil, func() *float64 { v := 40.0; return &v }())
	blocked, _ := filter.NewWindow(day(12), day(15))
	free, _ := filter.NewWindow(day(21), day(25))

	tests := []struct {
		name string
		spec filter.Spec
		want string
	}{
		{"text", filter.New("canon", "", "", "", "", filter.PriceRange{}, nil), "[1 2]"},
		{"text escapes percent", filter.New("100%", "", "", "", "", filter.PriceRange{}, nil), "[1]"},
		{"percent is literal", filter.New("%", "", "", "", "", filter.PriceRange{}, nil), "[1]"},
		{"max price", filter.New("", "", "", "", "", max40, nil), "[2]"},
		{"state", filter.New("", "", "", "", "ca", filter.PriceRange{}, nil), "[1 2]"},
		{"condition", filter.New("", "", domcat.ConditionGood, "", "", filter.PriceRange{}, nil), "[2 3]"},
		{"window blocked by approved", filter.New("", "", "", "", "", filter.PriceRange{}, &blocked), "[2 3]"},
		{"window free", filter.New("", "", "", "", "", filter.PriceRange{}, &free), "[1 2 3]"},
		{"no match", filter.New("", "lenses", "", "", "", filter.PriceRange{}, nil), "[]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, err := New(testStore.Pool()).Query(context.Background(), tc.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := fmt.Sprint(itemIDs(items)); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestPostgres_MigrateIdempotent(t *testing.T) {
	n, err := testStore.Migrate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("applied %d migrations on second run, want 0", n)
	}
}
