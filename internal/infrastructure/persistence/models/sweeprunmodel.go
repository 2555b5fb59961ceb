package models

import (
	"time"
)

// SweepRunModel persists the daily run lock. Live is true while the run is
// non-terminal and NULL otherwise, so the (sweep_date, live) unique key admits
// at most one live run per date while letting finished runs accumulate.
type SweepRunModel struct {
	ID          uint      `gorm:"primaryKey"`
	SweepID     string    `gorm:"uniqueIndex;size:32;not null"`
	SweepDate   time.Time `gorm:"not null;uniqueIndex:idx_sweep_date_live"`
	State       string    `gorm:"size:20;not null"`
	Live        *bool     `gorm:"uniqueIndex:idx_sweep_date_live"`
	Processed   int       `gorm:"not null;default:0"`
	Succeeded   int       `gorm:"not null;default:0"`
	Failed      int       `gorm:"not null;default:0"`
	Skipped     int       `gorm:"not null;default:0"`
	AbortReason *string   `gorm:"size:255"`
	StartedAt   time.Time `gorm:"not null"`
	FinishedAt  *time.Time
}

func (SweepRunModel) TableName() string {
	return "sweep_runs"
}
