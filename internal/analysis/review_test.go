package analysis_test

import (
	"testing"

	"github.com/dsablic/klio/internal/analysis"
	"github.com/dsablic/klio/internal/model"
)

func TestSensitiveFiles(t *testing.T) {
	stats := analysis.Normalize(decode(t, samplePayload), testNow)
	files := analysis.SensitiveFiles(stats)

	if len(files) != 3 {
		t.Fatalf("expected 3 unique files, got %d", len(files))
	}
	// Oldest bucket first.
	if files[0].ID != "s1" || files[0].Category != model.RiskFinancial {
		t.Errorf("expected s1 financial first, got %+v", files[0])
	}
	if files[0].RiskLevel != 0.6 {
		t.Errorf("expected first finding to set risk level 0.6, got %v", files[0].RiskLevel)
	}
	// d1 is flagged as pii before legal.
	if files[1].ID != "d1" || files[1].Reason != "employee_email" {
		t.Errorf("expected d1 via employee_email, got %+v", files[1])
	}
	if files[2].ID != "d2" || files[2].RiskLevel != 0.8 {
		t.Errorf("expected d2 with default risk level, got %+v", files[2])
	}
}

func TestTopFindings(t *testing.T) {
	lo, hi := 0.2, 0.9
	stat := model.RiskStat{Files: []model.FindingRef{
		{File: model.FileRef{ID: "a"}, Confidence: &lo},
		{File: model.FileRef{ID: "b"}},
		{File: model.FileRef{ID: "c"}, Confidence: &hi},
		{File: model.FileRef{ID: "d"}, Confidence: &lo},
	}}

	top := analysis.TopFindings(stat, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3, got %d", len(top))
	}
	if top[0].File.ID != "c" || top[1].File.ID != "a" || top[2].File.ID != "d" {
		t.Errorf("unexpected order: %s %s %s", top[0].File.ID, top[1].File.ID, top[2].File.ID)
	}
	if stat.Files[0].File.ID != "a" {
		t.Error("input must not be reordered")
	}
}
