package model

import "time"

// ScheduleEvent is a single entry extracted from a schedule image.
// DayName and Date are both kept exactly as extracted; the source may
// disagree with itself and neither value is corrected from the other.
type ScheduleEvent struct {
	DayName     string
	Date        *time.Time
	RawTime     string
	Timezone    string
	Title       string
	Description string

	// UTCInstant is RawTime resolved against Timezone on Date. It is nil
	// when the time is missing or could not be normalized; the event is
	// still displayed with the raw time string in that case.
	UTCInstant *time.Time
}

// ScheduleDocument is the parsed form of one extracted schedule payload.
// Events keep the order they appeared in the payload.
type ScheduleDocument struct {
	StartDate *time.Time
	EndDate   *time.Time
	Events    []ScheduleEvent
}
