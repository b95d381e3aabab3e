package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NormalizationErrorKind classifies why a time/timezone pair could not be
// resolved to a UTC instant.
type NormalizationErrorKind int

const (
	UnparseableTime NormalizationErrorKind = iota
	UnknownTimezone
)

// NormalizationError is returned by Normalize. Callers degrade on it
// instead of dropping the event.
type NormalizationError struct {
	Kind  NormalizationErrorKind
	Value string
}

func (e *NormalizationError) Error() string {
	switch e.Kind {
	case UnknownTimezone:
		return fmt.Sprintf("unknown timezone %q", e.Value)
	default:
		return fmt.Sprintf("unparseable time %q", e.Value)
	}
}

// Fixed-offset zone abbreviations the extraction model is known to emit.
// Abbreviations are ambiguous in general, so only the ones that actually
// show up in schedule images are mapped.
var zoneOffsets = map[string]int{
	"UTC":  0,
	"GMT":  0,
	"WET":  0,
	"BST":  1 * 3600,
	"WEST": 1 * 3600,
	"CET":  1 * 3600,
	"CEST": 2 * 3600,
	"EET":  2 * 3600,
	"EEST": 3 * 3600,
}

var wallClockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3 PM", "3PM"}

var offsetPattern = regexp.MustCompile(`^(?:UTC|GMT)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// Normalize resolves a wall-clock time and timezone on the given calendar
// date to an absolute UTC instant. It is a pure function: the result
// depends only on its inputs, never on the current clock. An empty tz
// means UTC.
func Normalize(date time.Time, rawTime, rawTZ string) (time.Time, error) {
	clock, err := parseWallClock(rawTime)
	if err != nil {
		return time.Time{}, err
	}

	loc, err := resolveLocation(rawTZ)
	if err != nil {
		return time.Time{}, err
	}

	local := time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, loc)
	return local.UTC(), nil
}

func parseWallClock(raw string) (time.Time, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	for _, layout := range wallClockLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &NormalizationError{Kind: UnparseableTime, Value: raw}
}

func resolveLocation(raw string) (*time.Location, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.UTC, nil
	}

	if offset, ok := zoneOffsets[strings.ToUpper(v)]; ok {
		return time.FixedZone(strings.ToUpper(v), offset), nil
	}

	if m := offsetPattern.FindStringSubmatch(strings.ToUpper(v)); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		if hours <= 14 && minutes < 60 {
			offset := hours*3600 + minutes*60
			if m[1] == "-" {
				offset = -offset
			}
			return time.FixedZone(v, offset), nil
		}
		return nil, &NormalizationError{Kind: UnknownTimezone, Value: raw}
	}

	// IANA names like Europe/Berlin are case-sensitive; try as given.
	if loc, err := time.LoadLocation(v); err == nil {
		return loc, nil
	}

	return nil, &NormalizationError{Kind: UnknownTimezone, Value: raw}
}
