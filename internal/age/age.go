// Package age places files into the fixed age buckets used by the dashboard.
package age

import (
	"time"

	"github.com/dsablic/klio/internal/model"
)

const (
	OneYearDays    = 365
	ThreeYearsDays = 3 * OneYearDays
)

// Classify returns the bucket for a file last modified at modified,
// relative to now. Files modified in the future count as new.
func Classify(modified, now time.Time) model.AgeBucket {
	days := int(now.Sub(modified).Hours() / 24)

	switch {
	case days <= OneYearDays:
		return model.LessThanOneYear
	case days <= ThreeYearsDays:
		return model.OneToThreeYears
	default:
		return model.MoreThanThreeYears
	}
}

// ClassifyTimestamp parses an RFC 3339 Drive timestamp and classifies it.
// The second result is false when the timestamp cannot be parsed.
func ClassifyTimestamp(ts string, now time.Time) (model.AgeBucket, bool) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return "", false
	}
	return Classify(t, now), true
}
