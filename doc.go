// Package rentdex embeds the rental catalog search engine in a Go process.
//
// A search merges two paths: an exact structured query against the PostgreSQL
// catalog and an approximate text match against an in-memory fuzzy index
// rebuilt from cached catalog snapshots. Exact matches come first, fuzzy-only
// matches follow, then the merged list is sorted and paginated.
//
//	client, err := rentdex.New(ctx,
//	    rentdex.WithPostgres("postgres://localhost:5432/rentdex"),
//	    rentdex.WithRedis("localhost:6379", ""),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	res, err := client.Search(ctx, rentdex.Query{Text: "cannon", Category: "cameras"})
//
// Call InvalidateIndex after catalog mutations so the next search rebuilds the
// index from a fresh snapshot.
package rentdex
