package valueobjects

type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "active"
	ScheduleStatusPaused    ScheduleStatus = "paused"
	ScheduleStatusSuspended ScheduleStatus = "suspended"
)

func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusActive, ScheduleStatusPaused, ScheduleStatusSuspended:
		return true
	default:
		return false
	}
}

// IsChargeable reports whether the schedule may be charged automatically.
// Paused and suspended schedules are never charged.
func (s ScheduleStatus) IsChargeable() bool {
	return s == ScheduleStatusActive
}

func (s ScheduleStatus) IsSuspended() bool {
	return s == ScheduleStatusSuspended
}

func (s ScheduleStatus) String() string {
	return string(s)
}
