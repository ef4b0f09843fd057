// Package usage builds the ordered list of usages probed for a last name.
package usage

import (
	"github.com/vietddude/namecord/internal/core/domain"
)

// Shuffler randomizes order. *math/rand/v2.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Catalog turns the usages of a first name into probe candidates.
type Catalog struct {
	table *RewriteTable
}

// NewCatalog creates a catalog using table; nil selects DefaultRewriteTable.
func NewCatalog(table *RewriteTable) *Catalog {
	if table == nil {
		table = DefaultRewriteTable()
	}
	return &Catalog{table: table}
}

// Build deduplicates records by (code, description), shuffles them with rng and
// appends one rewritten record for every record matching the rewrite table.
// Augmented records keep the shuffled relative order and are not deduplicated
// against the originals.
func (c *Catalog) Build(records []domain.UsageRecord, rng Shuffler) []domain.UsageRecord {
	type key struct {
		code        domain.UsageCode
		description string
	}

	seen := make(map[key]struct{}, len(records))
	out := make([]domain.UsageRecord, 0, len(records))
	for _, r := range records {
		k := key{r.Code, r.Description}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return out
	}

	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	n := len(out)
	for _, r := range out[:n] {
		code, ok := c.table.Rewrite(r.Code)
		if !ok {
			continue
		}
		out = append(out, domain.UsageRecord{
			Code:        code,
			Gender:      r.Gender,
			Description: r.Description,
		})
	}
	return out
}
