package analysis

import (
	"sort"
	"time"

	"github.com/dsablic/klio/internal/model"
)

const (
	// TopOwnerCount is how many owners the dashboard ranks.
	TopOwnerCount = 3
	// StaleAfter is how long a file must go unopened to count as stale.
	StaleAfter = 2 * 365 * 24 * time.Hour
)

// TopOwners ranks the owners of every listed file by file count, highest
// first, ties by name. Files without an owner are skipped.
func TopOwners(raw model.RawAnalysis, n int) []model.OwnerCount {
	counts := make(map[string]int)
	for _, b := range raw.Buckets {
		for _, files := range b.FileTypes {
			for _, f := range files {
				if f.Owner != "" {
					counts[f.Owner]++
				}
			}
		}
	}

	owners := make([]model.OwnerCount, 0, len(counts))
	for o, c := range counts {
		owners = append(owners, model.OwnerCount{Owner: o, Count: c})
	}
	sort.Slice(owners, func(i, j int) bool {
		if owners[i].Count != owners[j].Count {
			return owners[i].Count > owners[j].Count
		}
		return owners[i].Owner < owners[j].Owner
	})
	if n >= 0 && len(owners) > n {
		owners = owners[:n]
	}
	return owners
}

// StaleFiles counts listed files last opened more than StaleAfter before
// now. Files without a parseable access time are not stale.
func StaleFiles(raw model.RawAnalysis, now time.Time) int {
	cutoff := now.Add(-StaleAfter)
	stale := 0
	for _, b := range raw.Buckets {
		for _, files := range b.FileTypes {
			for _, f := range files {
				t, err := time.Parse(time.RFC3339, f.LastAccessed)
				if err == nil && t.Before(cutoff) {
					stale++
				}
			}
		}
	}
	return stale
}
