package model

import (
	"time"

	"github.com/google/uuid"
)

// Hours holds the weekly opening hours of a study spot. A nil start/end
// pair means the spot is closed that day.
type Hours struct {
	ID        uuid.UUID  `json:"id"`
	MonStart  *TimeOfDay `json:"mon_start,omitempty"`
	MonEnd    *TimeOfDay `json:"mon_end,omitempty"`
	TueStart  *TimeOfDay `json:"tue_start,omitempty"`
	TueEnd    *TimeOfDay `json:"tue_end,omitempty"`
	WedStart  *TimeOfDay `json:"wed_start,omitempty"`
	WedEnd    *TimeOfDay `json:"wed_end,omitempty"`
	ThuStart  *TimeOfDay `json:"thu_start,omitempty"`
	ThuEnd    *TimeOfDay `json:"thu_end,omitempty"`
	FriStart  *TimeOfDay `json:"fri_start,omitempty"`
	FriEnd    *TimeOfDay `json:"fri_end,omitempty"`
	SatStart  *TimeOfDay `json:"sat_start,omitempty"`
	SatEnd    *TimeOfDay `json:"sat_end,omitempty"`
	SunStart  *TimeOfDay `json:"sun_start,omitempty"`
	SunEnd    *TimeOfDay `json:"sun_end,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HoursCreate is the creation payload for opening hours.
type HoursCreate struct {
	ID       *uuid.UUID `json:"id,omitempty"`
	MonStart *TimeOfDay `json:"mon_start,omitempty"`
	MonEnd   *TimeOfDay `json:"mon_end,omitempty"`
	TueStart *TimeOfDay `json:"tue_start,omitempty"`
	TueEnd   *TimeOfDay `json:"tue_end,omitempty"`
	WedStart *TimeOfDay `json:"wed_start,omitempty"`
	WedEnd   *TimeOfDay `json:"wed_end,omitempty"`
	ThuStart *TimeOfDay `json:"thu_start,omitempty"`
	ThuEnd   *TimeOfDay `json:"thu_end,omitempty"`
	FriStart *TimeOfDay `json:"fri_start,omitempty"`
	FriEnd   *TimeOfDay `json:"fri_end,omitempty"`
	SatStart *TimeOfDay `json:"sat_start,omitempty"`
	SatEnd   *TimeOfDay `json:"sat_end,omitempty"`
	SunStart *TimeOfDay `json:"sun_start,omitempty"`
	SunEnd   *TimeOfDay `json:"sun_end,omitempty"`
}

// NewHours realizes opening hours from the creation payload.
func NewHours(c HoursCreate, now time.Time) Hours {
	h := Hours{
		ID:        uuid.New(),
		MonStart:  c.MonStart,
		MonEnd:    c.MonEnd,
		TueStart:  c.TueStart,
		TueEnd:    c.TueEnd,
		WedStart:  c.WedStart,
		WedEnd:    c.WedEnd,
		ThuStart:  c.ThuStart,
		ThuEnd:    c.ThuEnd,
		FriStart:  c.FriStart,
		FriEnd:    c.FriEnd,
		SatStart:  c.SatStart,
		SatEnd:    c.SatEnd,
		SunStart:  c.SunStart,
		SunEnd:    c.SunEnd,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.ID != nil {
		h.ID = *c.ID
	}
	return h
}

// HoursUpdate is the partial update for opening hours; only supplied
// fields change.
type HoursUpdate struct {
	MonStart *TimeOfDay `json:"mon_start,omitempty"`
	MonEnd   *TimeOfDay `json:"mon_end,omitempty"`
	TueStart *TimeOfDay `json:"tue_start,omitempty"`
	TueEnd   *TimeOfDay `json:"tue_end,omitempty"`
	WedStart *TimeOfDay `json:"wed_start,omitempty"`
	WedEnd   *TimeOfDay `json:"wed_end,omitempty"`
	ThuStart *TimeOfDay `json:"thu_start,omitempty"`
	ThuEnd   *TimeOfDay `json:"thu_end,omitempty"`
	FriStart *TimeOfDay `json:"fri_start,omitempty"`
	FriEnd   *TimeOfDay `json:"fri_end,omitempty"`
	SatStart *TimeOfDay `json:"sat_start,omitempty"`
	SatEnd   *TimeOfDay `json:"sat_end,omitempty"`
	SunStart *TimeOfDay `json:"sun_start,omitempty"`
	SunEnd   *TimeOfDay `json:"sun_end,omitempty"`
}

// IsEmpty returns true if the update carries no fields
func (u HoursUpdate) IsEmpty() bool {
	return u.MonStart == nil && u.MonEnd == nil &&
		u.TueStart == nil && u.TueEnd == nil &&
		u.WedStart == nil && u.WedEnd == nil &&
		u.ThuStart == nil && u.ThuEnd == nil &&
		u.FriStart == nil && u.FriEnd == nil &&
		u.SatStart == nil && u.SatEnd == nil &&
		u.SunStart == nil && u.SunEnd == nil
}

// ApplyTo patches the supplied fields into h
func (u HoursUpdate) ApplyTo(h *Hours) {
	if u.MonStart != nil {
		h.MonStart = u.MonStart
	}
	if u.MonEnd != nil {
		h.MonEnd = u.MonEnd
	}
	if u.TueStart != nil {
		h.TueStart = u.TueStart
	}
	if u.TueEnd != nil {
		h.TueEnd = u.TueEnd
	}
	if u.WedStart != nil {
		h.WedStart = u.WedStart
	}
	if u.WedEnd != nil {
		h.WedEnd = u.WedEnd
	}
	if u.ThuStart != nil {
		h.ThuStart = u.ThuStart
	}
	if u.ThuEnd != nil {
		h.ThuEnd = u.ThuEnd
	}
	if u.FriStart != nil {
		h.FriStart = u.FriStart
	}
	if u.FriEnd != nil {
		h.FriEnd = u.FriEnd
	}
	if u.SatStart != nil {
		h.SatStart = u.SatStart
	}
	if u.SatEnd != nil {
		h.SatEnd = u.SatEnd
	}
	if u.SunStart != nil {
		h.SunStart = u.SunStart
	}
	if u.SunEnd != nil {
		h.SunEnd = u.SunEnd
	}
}
