package verdict

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gosigma/domain/core"
	"gosigma/domain/stats"
)

// Label is the human-facing classification of a sigma
type Label string

const (
	LabelDiscovery    Label = "DISCOVERY"
	LabelProof        Label = "PROOF"
	LabelHint         Label = "HINT"
	LabelInconclusive Label = "INCONCLUSIVE"
)

// Threshold maps every sigma at or above Cutoff to Label
type Threshold struct {
	Cutoff float64 `json:"cutoff"`
	Label  Label   `json:"label"`
}

// Table is an ordered rule table, highest cutoff first
type Table struct {
	thresholds []Threshold
	fallback   Label
}

// NewTable validates and freezes a rule table. Cutoffs must be finite and
// strictly descending; an empty fallback becomes INCONCLUSIVE.
func NewTable(thresholds []Threshold, fallback Label) (*Table, error) {
	if fallback == "" {
		fallback = LabelInconclusive
	}
	for i, th := range thresholds {
		if math.IsNaN(th.Cutoff) || math.IsInf(th.Cutoff, 0) {
			return nil, core.NewConfigurationError("thresholds", fmt.Sprintf("cutoff %d is not finite", i))
		}
		if strings.TrimSpace(string(th.Label)) == "" {
			return nil, core.NewConfigurationError("thresholds", fmt.Sprintf("cutoff %d has empty label", i))
		}
		if i > 0 && th.Cutoff >= thresholds[i-1].Cutoff {
			return nil, core.NewConfigurationError("thresholds",
				fmt.Sprintf("cutoffs must be strictly descending (%v after %v)", th.Cutoff, thresholds[i-1].Cutoff))
		}
	}
	copied := make([]Threshold, len(thresholds))
	copy(copied, thresholds)
	return &Table{thresholds: copied, fallback: fallback}, nil
}

// DefaultTable is the 5/3/1 sigma ladder
func DefaultTable() *Table {
	return &Table{
		thresholds: []Threshold{
			{Cutoff: 5.0, Label: LabelDiscovery},
			{Cutoff: 3.0, Label: LabelProof},
			{Cutoff: 1.0, Label: LabelHint},
		},
		fallback: LabelInconclusive,
	}
}

// ParseTable reads "5:DISCOVERY,3:PROOF,1:HINT"
func ParseTable(raw string) (*Table, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTable(), nil
	}

	var thresholds []Threshold
	for _, part := range strings.Split(raw, ",") {
		cutoffStr, label, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, core.NewConfigurationError("thresholds", fmt.Sprintf("entry %q is not cutoff:label", part))
		}
		cutoff, err := strconv.ParseFloat(strings.TrimSpace(cutoffStr), 64)
		if err != nil {
			return nil, core.NewConfigurationError("thresholds", fmt.Sprintf("cutoff %q: %v", cutoffStr, err))
		}
		thresholds = append(thresholds, Threshold{
			Cutoff: cutoff,
			Label:  Label(strings.ToUpper(strings.TrimSpace(label))),
		})
	}
	return NewTable(thresholds, LabelInconclusive)
}

// Thresholds returns a copy of the rules
func (t *Table) Thresholds() []Threshold {
	out := make([]Threshold, len(t.thresholds))
	copy(out, t.thresholds)
	return out
}

// Fallback returns the label used when no cutoff matches
func (t *Table) Fallback() Label {
	return t.fallback
}

// Label returns the first label whose cutoff is <= sigma. NaN never matches.
func (t *Table) Label(sigma float64) Label {
	if math.IsNaN(sigma) {
		return t.fallback
	}
	for _, th := range t.thresholds {
		if th.Cutoff <= sigma {
			return th.Label
		}
	}
	return t.fallback
}

// Classify labels a finished run
func Classify(result *stats.TestResult, table *Table) Label {
	if table == nil {
		table = DefaultTable()
	}
	if result == nil {
		return table.fallback
	}
	return table.Label(result.Sigma)
}
