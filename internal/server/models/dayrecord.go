package models

import "time"

// Weather is the snapshot stored on a day record. The three fields are
// always set or cleared together; a partially populated snapshot is never
// persisted.
type Weather struct {
	TempC float64
	Code  int
	Label string
}

// DayRecord is the per-account, per-date journal entry. No row exists for a
// date until the first save; viewing an empty date works on a blank draft.
// The location fields are a snapshot frozen at the time weather was last
// resolved for this record, independent of the account's current Settings.
type DayRecord struct {
	ID        string
	UserID    string
	Date      string // YYYY-MM-DD, local calendar date, part of the natural key
	Comment   string
	ImagePath string // object storage key, never a signed URL
	Mode      LocationMode
	Lat       *float64
	Lon       *float64
	Place     string // only meaningful in ModeNamedCity
	Weather   *Weather
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateLayout is the canonical key format for day records. Dates are taken
// in the device's local calendar; no timezone normalization happens here.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is an exact YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	return t.Format(DateLayout) == s
}
