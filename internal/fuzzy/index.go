// Package fuzzy implements the approximate, weighted multi-field text index
// rebuilt from catalog snapshots.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/rentdex/internal/domain/catalog"
	"github.com/kailas-cloud/rentdex/internal/domain/search/result"
)

// Index defaults.
const (
	DefaultThreshold      = 0.4
	DefaultMinMatchLength = 2

	// scoreFloor keeps a perfect field match from collapsing the product score to zero.
	scoreFloor = 0.001
)

// Field is one searchable item attribute with its relative weight.
type Field struct {
	Name   string
	Weight float64
	Value  func(*catalog.Item) string
}

// DefaultFields weights title highest, description and brand next, model and category lowest.
func DefaultFields() []Field {
	return []Field{
		{Name: "title", Weight: 3, Value: func(it *catalog.Item) string { return it.Title }},
		{Name: "description", Weight: 2, Value: func(it *catalog.Item) string { return it.Description }},
		{Name: "brand", Weight: 2, Value: func(it *catalog.Item) string { return it.Brand }},
		{Name: "model", Weight: 1, Value: func(it *catalog.Item) string { return it.Model }},
		{Name: "category", Weight: 1, Value: func(it *catalog.Item) string { return it.Category }},
	}
}

// Options tunes match tolerance.
type Options struct {
	// Threshold is the worst normalized field score still counted as a match (0 = exact, 1 = unrelated).
	Threshold float64
	// MinMatchLength drops query tokens shorter than this many runes.
	MinMatchLength int
	Fields         []Field
}

// Builder creates indexes with a fixed configuration.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder, filling zero options with defaults and normalizing weights to sum to 1.
func NewBuilder(opts Options) *Builder {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MinMatchLength <= 0 {
		opts.MinMatchLength = DefaultMinMatchLength
	}
	if len(opts.Fields) == 0 {
		opts.Fields = DefaultFields()
	}

	var sum float64
	for _, f := range opts.Fields {
		sum += f.Weight
	}
	fields := make([]Field, len(opts.Fields))
	for i, f := range opts.Fields {
		fields[i] = f
		if sum > 0 {
			fields[i].Weight = f.Weight / sum
		}
	}
	opts.Fields = fields

	return &Builder{opts: opts}
}

// Build indexes items. The items slice is not retained.
func (b *Builder) Build(items []catalog.Item) *Index {
	f := newFolder()
	entries := make([]entry, len(items))
	for i := range items {
		it := items[i]
		fields := make([]indexedField, len(b.opts.Fields))
		for j, fld := range b.opts.Fields {
			text := f.fold(fld.Value(&it))
			fields[j] = indexedField{text: text, tokens: tokenize(text)}
		}
		entries[i] = entry{item: it, fields: fields}
	}
	return &Index{opts: b.opts, entries: entries}
}

type indexedField struct {
	text   string
	tokens []string
}

type entry struct {
	item   catalog.Item
	fields []indexedField
}

// Index is an immutable fuzzy text index over one snapshot.
type Index struct {
	opts    Options
	entries []entry
}

// Len returns the number of indexed items.
func (ix *Index) Len() int { return len(ix.entries) }

// Search returns every item whose text resembles the query, best match first.
// Equal scores keep snapshot order.
func (ix *Index) Search(text string) []result.Hit {
	q := newFolder().fold(strings.TrimSpace(text))

	var qTokens []string
	for _, tok := range tokenize(q) {
		if utf8.RuneCountInString(tok) >= ix.opts.MinMatchLength {
			qTokens = append(qTokens, tok)
		}
	}
	if len(qTokens) == 0 {
		return nil
	}

	type scored struct {
		pos   int
		score float64
	}
	var matches []scored
	for i := range ix.entries {
		if s, ok := ix.score(q, qTokens, &ix.entries[i]); ok {
			matches = append(matches, scored{pos: i, score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})

	hits := make([]result.Hit, len(matches))
	for i, m := range matches {
		hits[i] = result.Hit{Item: ix.entries[m.pos].item, Score: m.score}
	}
	return hits
}

// score combines matched fields as prod(max(s, floor)^weight).
func (ix *Index) score(q string, qTokens []string, e *entry) (float64, bool) {
	total := 1.0
	matched := false
	for i := range e.fields {
		s := fieldScore(q, qTokens, &e.fields[i])
		if s > ix.opts.Threshold {
			continue
		}
		matched = true
		total *= math.Pow(math.Max(s, scoreFloor), ix.opts.Fields[i].Weight)
	}
	return total, matched
}

func fieldScore(q string, qTokens []string, f *indexedField) float64 {
	if f.text == "" {
		return 1
	}
	if strings.Contains(f.text, q) {
		return 0
	}
	var sum float64
	for _, qt := range qTokens {
		sum += tokenScore(qt, f.tokens)
	}
	return sum / float64(len(qTokens))
}

// tokenScore is the best normalized edit distance between qt and any field token,
// also trying the field token's prefix so partial words match.
func tokenScore(qt string, tokens []string) float64 {
	qr := []rune(qt)
	best := 1.0
	for _, tok := range tokens {
		d := levenshtein.ComputeDistance(qt, tok)
		if tr := []rune(tok); len(tr) > len(qr) {
			if pd := levenshtein.ComputeDistance(qt, string(tr[:len(qr)])); pd < d {
				d = pd
			}
		}
		s := float64(d) / float64(len(qr))
		if s < best {
			best = s
			if best == 0 {
				break
			}
		}
	}
	return best
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// folder case-folds and strips combining marks so "Café" and "CAFE" index alike.
// Not safe for concurrent use.
type folder struct {
	marks transform.Transformer
	caser cases.Caser
}

func newFolder() *folder {
	return &folder{
		marks: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		caser: cases.Fold(),
	}
}

func (f *folder) fold(s string) string {
	if s == "" {
		return ""
	}
	if out, _, err := transform.String(f.marks, s); err == nil {
		s = out
	}
	return f.caser.String(s)
}
