package run

import (
	"gosigma/domain/core"
	"gosigma/domain/stats"
)

// Manifest is the replay record for one tester run. It is built before any
// trial executes so a failed run still reports what it was attempting.
type Manifest struct {
	RunID       core.RunID      `json:"run_id"`
	Experiment  string          `json:"experiment"`
	DatasetHash core.Hash       `json:"dataset_hash"`
	Seed        uint64          `json:"seed"`
	Trials      int             `json:"trials"`
	BlockSize   int             `json:"block_size"`
	Workers     int             `json:"workers"`
	Direction   stats.Direction `json:"direction"`
	CodeVersion string          `json:"code_version"`
	Fingerprint Fingerprint     `json:"fingerprint"`
	CreatedAt   core.Timestamp  `json:"created_at"`
}

// NewManifest stamps a fresh run ID onto the determinism parameters. Workers
// is recorded but excluded from the fingerprint since it never changes results.
func NewManifest(experiment string, datasetHash core.Hash, seed uint64, trials, blockSize, workers int,
	direction stats.Direction, codeVersion string) *Manifest {

	return &Manifest{
		RunID:       core.NewRunID(),
		Experiment:  experiment,
		DatasetHash: datasetHash,
		Seed:        seed,
		Trials:      trials,
		BlockSize:   blockSize,
		Workers:     workers,
		Direction:   direction,
		CodeVersion: codeVersion,
		Fingerprint: NewFingerprint(experiment, datasetHash, seed, trials, blockSize, direction, codeVersion),
		CreatedAt:   core.Now(),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewConfigurationError("run_manifest", "run_id cannot be empty")
	}
	if m.Experiment == "" {
		return core.NewConfigurationError("run_manifest", "experiment cannot be empty")
	}
	if m.Trials <= 0 {
		return core.NewConfigurationError("run_manifest", "trials must be positive")
	}
	if m.BlockSize <= 0 {
		return core.NewConfigurationError("run_manifest", "block_size must be positive")
	}
	if m.CodeVersion == "" {
		return core.NewConfigurationError("run_manifest", "code_version cannot be empty")
	}
	return nil
}
