package models

import "time"

// Check-in status tags. The tag is set at creation time by the caller and
// carried verbatim; it is not derived from the clock.
const (
	CheckInStatusNormal = "NORMAL"
	CheckInStatusLate   = "LATE"
	CheckInStatusEarly  = "EARLY"
)

// CheckIn is one daily check-in record. CheckinDay carries the calendar day
// (formatted 2006-01-02 in the configured time zone) and forms a unique key
// with UserID; the database constraint, not the application probe, is what
// enforces one check-in per user per day.
type CheckIn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:uniq_user_checkin_day,priority:1" json:"user_id"`
	CheckinDay  string    `gorm:"type:date;not null;uniqueIndex:uniq_user_checkin_day,priority:2" json:"checkin_day"`
	CheckinTime time.Time `gorm:"index;not null" json:"checkin_time"`
	Note        string    `gorm:"size:255" json:"note,omitempty"`
	Location    string    `gorm:"size:255" json:"location,omitempty"`
	Status      string    `gorm:"size:16;not null;default:NORMAL" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// DayFormat is the layout used for CheckinDay values.
const DayFormat = "2006-01-02"

// DayOf formats t as a calendar day in its own location.
func DayOf(t time.Time) string {
	return t.Format(DayFormat)
}
