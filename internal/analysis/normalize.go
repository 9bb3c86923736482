// Package analysis turns raw backend analysis payloads into dashboard stats.
package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dsablic/klio/internal/model"
	"github.com/dsablic/klio/internal/risk"
)

// Normalize reshapes a raw analysis payload into a complete DashboardStats.
// Every bucket, every known file type and every risk category is present in
// the result; anything missing from the payload comes out as zero. Stale
// files are counted relative to now, so the same payload and now always
// yield the same stats.
func Normalize(raw model.RawAnalysis, now time.Time) model.DashboardStats {
	dist := make(map[model.AgeBucket]model.BucketStats, len(model.AgeBuckets))
	for _, b := range model.AgeBuckets {
		bucket := raw.Buckets[b]
		dist[b] = model.BucketStats{
			Types: normalizeTypes(bucket.FileTypes),
			Risks: normalizeRisks(bucket.SensitiveInfo),
		}
	}

	summary := Aggregate(dist, raw.TotalDuplicates)
	return model.DashboardStats{
		DocCount:           summary.DocCount,
		DuplicateDocuments: summary.DuplicateDocuments,
		SensitiveDocuments: summary.SensitiveDocuments,
		StaleDocuments:     StaleFiles(raw, now),
		TotalSize:          summary.TotalSize,
		TopOwners:          TopOwners(raw, TopOwnerCount),
		AgeDistribution:    dist,
	}
}

func normalizeTypes(groups map[string][]model.RawFile) map[model.FileTypeCategory]model.TypeStat {
	types := make(map[model.FileTypeCategory]model.TypeStat, len(model.FileTypeCategories))
	for _, c := range model.FileTypeCategories {
		types[c] = model.TypeStat{}
	}

	total := 0
	for name, files := range groups {
		var size int64
		for _, f := range files {
			size += ParseSize(f.Size)
		}
		types[model.FileTypeCategory(name)] = model.TypeStat{Count: len(files), Size: size}
		total += len(files)
	}

	for c, s := range types {
		s.Percentage = Percentage(s.Count, total)
		types[c] = s
	}
	return types
}

func normalizeRisks(groups map[string][]model.RawFinding) map[model.RiskCategory]model.RiskStat {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	// Rule order first, then key order, so the running means are reproducible.
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := risk.Rank(risk.Categorize(keys[i])), risk.Rank(risk.Categorize(keys[j]))
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	accs := make(map[model.RiskCategory]*risk.Accumulator, len(model.RiskCategories))
	for _, c := range model.RiskCategories {
		accs[c] = &risk.Accumulator{}
	}

	total := 0
	for _, k := range keys {
		acc := accs[risk.Categorize(k)]
		for _, f := range groups[k] {
			acc.Add(model.FindingRef{
				File:        FileRef(f.File),
				FindingType: k,
				Confidence:  clampConfidence(f.Confidence),
			})
			total++
		}
	}

	risks := make(map[model.RiskCategory]model.RiskStat, len(accs))
	for c, acc := range accs {
		s := acc.Stat()
		s.Percentage = Percentage(s.Count, total)
		risks[c] = s
	}
	return risks
}

// FileRef converts a raw file entry into a canonical file reference.
func FileRef(f model.RawFile) model.FileRef {
	return model.FileRef{
		ID:           f.ID,
		Name:         f.Name,
		MimeType:     f.MimeType,
		ModifiedTime: f.ModifiedTime,
		Owner:        f.Owner,
		WebViewLink:  f.WebViewLink,
		Size:         ParseSize(f.Size),
	}
}

// Percentage returns round-half-up(100*count/total), or 0 when total is 0.
func Percentage(count, total int) float64 {
	if total <= 0 || count <= 0 {
		return 0
	}
	return float64((200*count + total) / (2 * total))
}

// ParseSize coerces a decoded JSON size value into bytes. Missing, negative
// or non-numeric values are 0.
func ParseSize(v any) int64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			if i < 0 {
				return 0
			}
			return i
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > math.MaxInt64 {
		return 0
	}
	return int64(f)
}

func clampConfidence(c *float64) *float64 {
	if c == nil {
		return nil
	}
	v := *c
	switch {
	case math.IsNaN(v) || v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	return &v
}
