package formatter

import "fmt"

// Stage is a step of one format operation.
type Stage uint8

const (
	StageIdle Stage = iota
	StageEligible
	StageSnapshotting
	StageInvoking
	StageSplicing
	StageRestoringView
	StageFailed
)

var stageNames = [...]string{
	StageIdle:          "idle",
	StageEligible:      "eligible",
	StageSnapshotting:  "snapshotting",
	StageInvoking:      "invoking",
	StageSplicing:      "splicing",
	StageRestoringView: "restoring-view",
	StageFailed:        "failed",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", s)
}
