package run

import (
	"crypto/sha256"
	"fmt"

	"gosigma/domain/core"
	"gosigma/domain/stats"
)

// Fingerprint ensures deterministic replay: two runs with the same
// fingerprint must produce bit-identical null distributions.
type Fingerprint struct {
	Experiment  string          `json:"experiment"`
	DatasetHash core.Hash       `json:"dataset_hash"`
	Seed        uint64          `json:"seed"`
	Trials      int             `json:"trials"`
	BlockSize   int             `json:"block_size"`
	Direction   stats.Direction `json:"direction"`
	CodeVersion string          `json:"code_version"`
	Fingerprint core.Hash       `json:"fingerprint"` // Hash of all above
}

// NewFingerprint creates a fingerprint from determinism parameters
func NewFingerprint(experiment string, datasetHash core.Hash, seed uint64, trials, blockSize int,
	direction stats.Direction, codeVersion string) Fingerprint {

	return Fingerprint{
		Experiment:  experiment,
		DatasetHash: datasetHash,
		Seed:        seed,
		Trials:      trials,
		BlockSize:   blockSize,
		Direction:   direction,
		CodeVersion: codeVersion,
		Fingerprint: computeFingerprint(experiment, datasetHash, seed, trials, blockSize, direction, codeVersion),
	}
}

// computeFingerprint generates deterministic hash from all determinism parameters
func computeFingerprint(experiment string, datasetHash core.Hash, seed uint64, trials, blockSize int,
	direction stats.Direction, codeVersion string) core.Hash {

	data := fmt.Sprintf("experiment:%s|dataset:%s|seed:%d|trials:%d|block:%d|direction:%s|code:%s",
		experiment, datasetHash, seed, trials, blockSize, direction, codeVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
