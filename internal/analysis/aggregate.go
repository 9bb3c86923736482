package analysis

import (
	"github.com/dsablic/klio/internal/model"
)

// Summary holds the top-level dashboard counters.
type Summary struct {
	DocCount           int
	DuplicateDocuments int
	SensitiveDocuments int
	TotalSize          int64
}

// Aggregate derives the summary counters from normalized bucket stats.
// Sensitive documents are counted once per distinct file, however many
// categories or buckets flag them; findings that name no file are not
// counted. Duplicates are taken from the payload.
func Aggregate(perBucket map[model.AgeBucket]model.BucketStats, duplicates int) Summary {
	var s Summary
	seen := make(map[string]struct{})

	for _, b := range perBucket {
		for _, t := range b.Types {
			s.DocCount += t.Count
			s.TotalSize += t.Size
		}
		for _, r := range b.Risks {
			for _, f := range r.Files {
				if !f.File.Identified() {
					continue
				}
				seen[f.File.Key()] = struct{}{}
			}
		}
	}

	s.SensitiveDocuments = len(seen)
	if duplicates > 0 {
		s.DuplicateDocuments = duplicates
	}
	return s
}
