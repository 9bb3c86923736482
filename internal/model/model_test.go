// internal/model/model_test.go
package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dsablic/klio/internal/model"
)

func TestDashboardStatsJSONShape(t *testing.T) {
	stats := model.DashboardStats{
		DocCount:           3,
		DuplicateDocuments: 1,
		SensitiveDocuments: 2,
		AgeDistribution: map[model.AgeBucket]model.BucketStats{
			model.LessThanOneYear: {
				Types: map[model.FileTypeCategory]model.TypeStat{
					model.Documents: {Count: 3, Size: 2048, Percentage: 100},
				},
				Risks: map[model.RiskCategory]model.RiskStat{},
			},
		},
	}

	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, key := range []string{`"docCount":3`, `"duplicateDocuments":1`, `"sensitiveDocuments":2`, `"lessThanOneYear"`, `"documents"`} {
		if !strings.Contains(s, key) {
			t.Errorf("expected %s in %s", key, s)
		}
	}
}

func TestAgeBucketValid(t *testing.T) {
	for _, b := range model.AgeBuckets {
		if !b.Valid() {
			t.Errorf("expected %s to be valid", b)
		}
	}
	if model.AgeBucket("tomorrow").Valid() {
		t.Error("expected unknown bucket to be invalid")
	}
}

func TestFileRefKey(t *testing.T) {
	if got := (model.FileRef{ID: "abc", Name: "x"}).Key(); got != "abc" {
		t.Errorf("expected abc, got %s", got)
	}
	if got := (model.FileRef{Name: "report.docx"}).Key(); got != "name:report.docx" {
		t.Errorf("expected name fallback, got %s", got)
	}
}

func TestFileRefIdentified(t *testing.T) {
	if (model.FileRef{}).Identified() {
		t.Error("expected zero FileRef to be unidentified")
	}
	if !(model.FileRef{Name: "a.doc"}).Identified() || !(model.FileRef{ID: "x"}).Identified() {
		t.Error("expected FileRef with an ID or a name to be identified")
	}
}
