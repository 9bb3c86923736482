package analysis

import (
	"sort"

	"github.com/dsablic/klio/internal/model"
	"github.com/dsablic/klio/internal/risk"
)

// reviewOrder walks the oldest files first, which is where stale sensitive
// data usually sits.
var reviewOrder = []model.AgeBucket{model.MoreThanThreeYears, model.OneToThreeYears, model.LessThanOneYear}

// SensitiveFiles flattens every finding of stats into one list with a
// single entry per file. The first finding seen for a file decides its
// bucket, category and risk level. Findings that name no file are left out.
func SensitiveFiles(stats model.DashboardStats) []model.SensitiveFile {
	var out []model.SensitiveFile
	seen := make(map[string]struct{})

	for _, b := range reviewOrder {
		bucket, ok := stats.AgeDistribution[b]
		if !ok {
			continue
		}
		for _, c := range model.RiskCategories {
			for _, f := range bucket.Risks[c].Files {
				if !f.File.Identified() {
					continue
				}
				key := f.File.Key()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}

				level := risk.DefaultConfidence
				if f.Confidence != nil {
					level = *f.Confidence
				}
				out = append(out, model.SensitiveFile{
					FileRef:   f.File,
					Bucket:    b,
					Category:  c,
					Reason:    f.FindingType,
					RiskLevel: level,
				})
			}
		}
	}
	return out
}

// TopFindings returns up to n findings of stat with the highest confidence.
// Ties keep their original order.
func TopFindings(stat model.RiskStat, n int) []model.FindingRef {
	sorted := make([]model.FindingRef, len(stat.Files))
	copy(sorted, stat.Files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return confidenceOf(sorted[i]) > confidenceOf(sorted[j])
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func confidenceOf(f model.FindingRef) float64 {
	if f.Confidence == nil {
		return 0
	}
	return *f.Confidence
}
