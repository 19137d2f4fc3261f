package stats

import (
	"time"

	"gosigma/domain/core"
)

// TestResult is the immutable outcome of one significance run
type TestResult struct {
	RunID       core.RunID `json:"run_id"`
	Experiment  string     `json:"experiment"`
	Trials      int        `json:"trials"`
	Seed        uint64     `json:"seed"`
	Direction   Direction  `json:"direction"`
	Fingerprint core.Hash  `json:"fingerprint"`

	Observed float64 `json:"observed"`
	NullMean float64 `json:"null_mean"`
	NullStd  float64 `json:"null_std"`
	Sigma    float64 `json:"sigma"`

	// PValue is Exceedances / Trials
	PValue      float64 `json:"p_value"`
	Exceedances int     `json:"exceedances"`
	// GaussianP is the upper normal tail at Sigma, for comparison with PValue
	GaussianP float64 `json:"gaussian_p"`

	Tolerance        float64 `json:"tolerance,omitempty"`
	ToleranceMatches int     `json:"tolerance_matches,omitempty"`

	Degenerate bool    `json:"degenerate"`
	Null       Summary `json:"null"`

	Duration    time.Duration  `json:"duration"`
	CompletedAt core.Timestamp `json:"completed_at"`

	Distribution *NullDistribution `json:"-"`
}

// Significant reports whether the run cleared the given sigma cutoff without
// any null trial reaching the observation, mirroring the "sigma > 5 and no
// matches" rule of the audits.
func (r *TestResult) Significant(cutoff float64) bool {
	return !r.Degenerate && r.Sigma > cutoff && r.Exceedances == 0
}
