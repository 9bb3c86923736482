package age

import (
	"github.com/dsablic/klio/internal/analysis"
	"github.com/dsablic/klio/internal/model"
)

// Share is the document count of one bucket and its share of all documents.
type Share struct {
	Bucket     model.AgeBucket
	Count      int
	Size       int64
	Percentage float64
}

// Summarize returns one Share per bucket, youngest first.
func Summarize(stats model.DashboardStats) []Share {
	shares := make([]Share, 0, len(model.AgeBuckets))
	total := 0
	for _, b := range model.AgeBuckets {
		s := Share{Bucket: b}
		for _, t := range stats.AgeDistribution[b].Types {
			s.Count += t.Count
			s.Size += t.Size
		}
		total += s.Count
		shares = append(shares, s)
	}

	for i := range shares {
		shares[i].Percentage = analysis.Percentage(shares[i].Count, total)
	}
	return shares
}
