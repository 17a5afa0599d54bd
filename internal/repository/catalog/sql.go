package catalog

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/filter"
)

const selectItems = `
	SELECT i.id, i.title, i.description, i.daily_price, i.weekly_price, i.monthly_price,
	       i.category, i.brand, i.model, i.condition, i.city, i.state,
	       i.average_rating, i.review_count, i.created_at, i.updated_at,
	       u.id, u.name,
	       COALESCE((
	           SELECT json_agg(json_build_object('start', b.start_date, 'end', b.end_date, 'status', b.status)
	                           ORDER BY b.start_date)
	           FROM bookings b
	           WHERE b.item_id = i.id AND b.status IN (%s)
	       ), '[]'::json)
	FROM items i
	JOIN users u ON u.id = i.owner_id`

const orderItems = `ORDER BY i.created_at DESC, i.id`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// activeStatuses is the SQL list of booking states that block availability.
var activeStatuses = fmt.Sprintf("'%s', '%s'", catalog.BookingPending, catalog.BookingApproved)

// buildQuery renders spec as a parameterized SELECT. Every predicate mirrors filter.Spec
// so the database and the in-memory path agree.
func buildQuery(spec filter.Spec) (string, []any) {
	var whereClauses []string
	var args []any
	argIdx := 1

	next := func(v any) int {
		args = append(args, v)
		argIdx++
		return argIdx - 1
	}

	if p := spec.Price().Min(); p != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("i.daily_price >= $%d", next(*p)))
	}
	if p := spec.Price().Max(); p != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("i.daily_price <= $%d", next(*p)))
	}
	if c := spec.Category(); c != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("i.category = $%d", next(c)))
	}
	if c := spec.Condition(); c != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("i.condition = $%d", next(string(c))))
	}
	if c := spec.City(); c != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("i.city ILIKE $%d", next(containsPattern(c))))
	}
	if s := spec.State(); s != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("i.state ILIKE $%d", next(containsPattern(s))))
	}
	if t := spec.Text(); t != "" {
		n := next(containsPattern(t))
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(i.title ILIKE $%d OR i.description ILIKE $%d OR i.brand ILIKE $%d OR i.model ILIKE $%d)",
			n, n, n, n))
	}
	if w := spec.Window(); w != nil {
		from := next(w.From())
		to := next(w.To())
		whereClauses = append(whereClauses, fmt.Sprintf(`NOT EXISTS (
		SELECT 1 FROM bookings ab
		WHERE ab.item_id = i.id
		  AND ab.status IN (%s)
		  AND NOT ($%d < ab.start_date OR $%d > ab.end_date))`, activeStatuses, to, from))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(selectItems, activeStatuses))
	if len(whereClauses) > 0 {
		sb.WriteString("\n\tWHERE ")
		sb.WriteString(strings.Join(whereClauses, "\n\t  AND "))
	}
	sb.WriteString("\n\t")
	sb.WriteString(orderItems)
	return sb.String(), args
}

// containsPattern turns a literal needle into an ILIKE substring pattern.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
