package age_test

import (
	"testing"
	"time"

	"github.com/dsablic/klio/internal/age"
	"github.com/dsablic/klio/internal/model"
)

func TestClassify(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		modified time.Time
		want     model.AgeBucket
	}{
		{"yesterday", now.AddDate(0, 0, -1), model.LessThanOneYear},
		{"exactly one year", now.AddDate(0, 0, -365), model.LessThanOneYear},
		{"just over one year", now.AddDate(0, 0, -366), model.OneToThreeYears},
		{"two years", now.AddDate(-2, 0, 0), model.OneToThreeYears},
		{"exactly three years", now.AddDate(0, 0, -1095), model.OneToThreeYears},
		{"four years", now.AddDate(-4, 0, 0), model.MoreThanThreeYears},
		{"future", now.AddDate(0, 0, 3), model.LessThanOneYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := age.Classify(tt.modified, now); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestClassifyTimestamp(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	b, ok := age.ClassifyTimestamp("2020-01-15T10:00:00.000Z", now)
	if !ok || b != model.MoreThanThreeYears {
		t.Errorf("expected moreThanThreeYears, got %s (ok=%v)", b, ok)
	}

	if _, ok := age.ClassifyTimestamp("last tuesday", now); ok {
		t.Error("expected unparseable timestamp to fail")
	}
}

func TestSummarize(t *testing.T) {
	stats := model.DashboardStats{
		AgeDistribution: map[model.AgeBucket]model.BucketStats{
			model.LessThanOneYear: {Types: map[model.FileTypeCategory]model.TypeStat{
				model.Documents: {Count: 1, Size: 10},
			}},
			model.MoreThanThreeYears: {Types: map[model.FileTypeCategory]model.TypeStat{
				model.Documents: {Count: 2, Size: 5},
				model.PDFs:      {Count: 1, Size: 5},
			}},
		},
	}

	shares := age.Summarize(stats)
	if len(shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(shares))
	}
	if shares[0].Percentage != 25 || shares[1].Percentage != 0 || shares[2].Percentage != 75 {
		t.Errorf("unexpected percentages: %+v", shares)
	}
	if shares[2].Size != 10 {
		t.Errorf("expected size 10, got %d", shares[2].Size)
	}
}
