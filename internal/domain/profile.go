package domain

import (
	"time"
)

// ProfileStatus is the lifecycle state of a business profile.
type ProfileStatus string

const (
	StatusPending   ProfileStatus = "pending"
	StatusClaimed   ProfileStatus = "claimed"
	StatusOptimized ProfileStatus = "optimized"
)

// Defaults applied to optional profile fields left blank on submission.
const (
	DefaultCategory  = "local_business"
	DefaultOpenTime  = "09:00"
	DefaultCloseTime = "17:00"
)

// Rank orders statuses along the lifecycle. Unknown values rank below pending.
func (s ProfileStatus) Rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusClaimed:
		return 2
	case StatusOptimized:
		return 3
	default:
		return 0
	}
}

// IsValid reports whether s is one of the known statuses.
func (s ProfileStatus) IsValid() bool {
	return s.Rank() > 0
}

// RequiresLocation reports whether a profile in this status must carry a location id.
func (s ProfileStatus) RequiresLocation() bool {
	return s == StatusClaimed || s == StatusOptimized
}

// CanAdvanceTo reports whether moving from s to next keeps the lifecycle monotonic.
// Staying in the same status counts as advancing.
func (s ProfileStatus) CanAdvanceTo(next ProfileStatus) bool {
	return next.IsValid() && next.Rank() >= s.Rank()
}

// Hours holds opening and closing times for one weekday, formatted HH:MM.
type Hours struct {
	Open  string
	Close string
}

// BusinessProfile is a user's business listing as tracked locally.
type BusinessProfile struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"userId"`
	BusinessName string        `json:"businessName"`
	Address      string        `json:"address"`
	Phone        string        `json:"phone"`
	Website      string        `json:"website"`
	Category     string        `json:"category"`
	MondayOpen   string        `json:"mondayOpen"`
	MondayClose  string        `json:"mondayClose"`
	TuesdayOpen  string        `json:"tuesdayOpen"`
	TuesdayClose string        `json:"tuesdayClose"`
	Status       ProfileStatus `json:"status"`
	LocationID   *string       `json:"locationId"`
	LastError    string        `json:"lastError,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Monday returns the Monday opening hours.
func (p *BusinessProfile) Monday() Hours {
	return Hours{Open: p.MondayOpen, Close: p.MondayClose}
}

// Tuesday returns the Tuesday opening hours.
func (p *BusinessProfile) Tuesday() Hours {
	return Hours{Open: p.TuesdayOpen, Close: p.TuesdayClose}
}

// HasLocation reports whether the claim step has produced a location id.
func (p *BusinessProfile) HasLocation() bool {
	return p.LocationID != nil && *p.LocationID != ""
}

// ApplyDefaults fills blank optional fields with their default values.
func (p *BusinessProfile) ApplyDefaults() {
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.MondayOpen == "" {
		p.MondayOpen = DefaultOpenTime
	}
	if p.MondayClose == "" {
		p.MondayClose = DefaultCloseTime
	}
	if p.TuesdayOpen == "" {
		p.TuesdayOpen = DefaultOpenTime
	}
	if p.TuesdayClose == "" {
		p.TuesdayClose = DefaultCloseTime
	}
}

// Clone returns a deep copy so callers cannot mutate stored records.
func (p *BusinessProfile) Clone() *BusinessProfile {
	if p == nil {
		return nil
	}
	c := *p
	if p.LocationID != nil {
		loc := *p.LocationID
		c.LocationID = &loc
	}
	return &c
}

// Stats aggregates profile counts for one user. Pending and Optimized count
// only their own status; Claimed makes Total = Pending + Claimed + Optimized.
type Stats struct {
	Total     int `json:"total"`
	Optimized int `json:"optimized"`
	Pending   int `json:"pending"`
	Claimed   int `json:"claimed"`
}

// ComputeStats aggregates profiles by status.
func ComputeStats(profiles []*BusinessProfile) Stats {
	st := Stats{Total: len(profiles)}
	for _, p := range profiles {
		switch p.Status {
		case StatusPending:
			st.Pending++
		case StatusClaimed:
			st.Claimed++
		case StatusOptimized:
			st.Optimized++
		}
	}
	return st
}
