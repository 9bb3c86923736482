// Package risk maps raw finding types onto the four coarse risk categories.
package risk

import (
	"strings"

	"github.com/dsablic/klio/internal/model"
)

// DefaultConfidence is used for findings that carry no confidence value.
const DefaultConfidence = 0.8

type rule struct {
	category model.RiskCategory
	needles  []string
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{model.RiskPII, []string{"pii", "email", "phone", "address"}},
	{model.RiskFinancial, []string{"financial", "bank", "credit"}},
	{model.RiskLegal, []string{"legal", "contract", "agreement"}},
}

// Categorize returns the risk category for a raw finding-type key. Matching
// is a case-sensitive substring test. Keys that match no rule are
// confidential.
func Categorize(findingType string) model.RiskCategory {
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(findingType, n) {
				return r.category
			}
		}
	}
	return model.RiskConfidential
}

// Rank returns the position of c in rule order, used to order aggregation.
func Rank(c model.RiskCategory) int {
	for i, rc := range model.RiskCategories {
		if rc == c {
			return i
		}
	}
	return len(model.RiskCategories)
}

// Accumulator folds findings into a RiskStat, keeping confidence as a
// running mean in the order findings are added.
type Accumulator struct {
	stat model.RiskStat
}

// Add appends a finding and updates the running mean confidence.
func (a *Accumulator) Add(f model.FindingRef) {
	c := DefaultConfidence
	if f.Confidence != nil {
		c = *f.Confidence
	}
	a.stat.Files = append(a.stat.Files, f)
	a.stat.Count++
	n := float64(a.stat.Count)
	a.stat.Confidence = (a.stat.Confidence*(n-1) + c) / n
}

// Stat returns the accumulated RiskStat. Percentage is left for the caller.
func (a *Accumulator) Stat() model.RiskStat {
	s := a.stat
	if s.Files == nil {
		s.Files = []model.FindingRef{}
	}
	return s
}
