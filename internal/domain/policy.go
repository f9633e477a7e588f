package domain

import "time"

// Policy is an insurance policy held by a user. Coverage dates carry no time of day.
type Policy struct {
	ID            int64
	UserID        int64
	Provider      string
	PolicyNumber  string
	CoverageStart time.Time
	CoverageEnd   time.Time
	CreatedAt     time.Time
}
