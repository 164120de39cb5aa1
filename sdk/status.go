package sdk

type StageStatus string

var (
	PendingStatus   StageStatus = "pending"
	RunningStatus   StageStatus = "running"
	SucceededStatus StageStatus = "succeeded"
	FailedStatus    StageStatus = "failed"
	SkippedStatus   StageStatus = "skipped"
)

// validTransitions describes the stage state machine:
// pending → running → (succeeded | failed), with pending → skipped for
// stages that never start because an earlier stage failed.
var validTransitions = map[StageStatus][]StageStatus{
	PendingStatus:   {RunningStatus, SkippedStatus},
	RunningStatus:   {SucceededStatus, FailedStatus},
	SucceededStatus: {},
	FailedStatus:    {},
	SkippedStatus:   {},
}

func (s StageStatus) CanTransition(to StageStatus) bool {
	for _, next := range validTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s StageStatus) IsTerminal() bool {
	return s == SucceededStatus || s == FailedStatus || s == SkippedStatus
}
