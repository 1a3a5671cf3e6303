// Package clientstats scrapes the prometheus endpoint of a slasher node and
// condenses it into a compact stats document for remote collection.
package clientstats

const (
	ClientName         = "sealwatch"
	SlasherProcessName = "slasher"
	APIVersion         = 1
)

// APIMessage is common to all requests to the client-stats API.
type APIMessage struct {
	APIVersion  int    `json:"version"`
	Timestamp   int64  `json:"timestamp"` // unix timestamp in milliseconds
	ProcessName string `json:"process"`
}

// CommonStats are process metrics present on every stats document.
type CommonStats struct {
	CPUProcessSecondsTotal int64  `json:"cpu_process_seconds_total"`
	MemoryProcessBytes     int64  `json:"memory_process_bytes"`
	ClientName             string `json:"client_name"`
	ClientVersion          string `json:"client_version"`
	ClientBuild            int64  `json:"client_build"`
}

// SlasherStats summarizes the slashing activity of a node.
type SlasherStats struct {
	SlashesTotal          int64            `json:"slashes_total"`
	RejectedEvidenceTotal int64            `json:"rejected_evidence_total"`
	RejectedEvidence      map[string]int64 `json:"rejected_evidence"`
	PenaltyAppliedTotal   int64            `json:"penalty_applied_total"`
	IncentivesVersion     int64            `json:"incentives_version"`
	RecordedEpochsTotal   int64            `json:"recorded_epochs_total"`
	InvalidSignerProofs   int64            `json:"invalid_signer_proofs_total"`
	LedgerReplayedSlashes int64            `json:"ledger_replayed_slashes_total"`
	LogErrorsTotal        int64            `json:"log_errors_total"`
	APIMessage            `json:",inline"`
	CommonStats           `json:",inline"`
}
