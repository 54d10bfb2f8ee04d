package models

import "time"

// DefaultRetentionDays is the horizon applied when no policy has been
// persisted yet (5 years).
const DefaultRetentionDays = 1825

// RetentionPolicy is the process-wide data-retention state. It is lazily
// created with the default horizon on first access and rewritten atomically
// after each sweep.
type RetentionPolicy struct {
	RetentionDays int        `json:"retention_days"`
	LastRun       *time.Time `json:"last_run"`
	LastDeleted   int64      `json:"last_deleted_count"`
	TotalDeleted  int64      `json:"total_deleted_count"`
}

// DefaultRetentionPolicy returns the policy used before any sweep has run.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{RetentionDays: DefaultRetentionDays}
}
