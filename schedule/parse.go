package schedule

import (
	"encoding/xml"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NiklasKy/QuingDiscordBot/model"
)

// ParseErrorKind classifies a whole-document parse failure.
type ParseErrorKind int

const (
	// Malformed means the payload structure itself is broken; nothing
	// partial is returned.
	Malformed ParseErrorKind = iota
)

// ParseError is returned by Parse when the whole payload is rejected.
type ParseError struct {
	Kind ParseErrorKind
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed schedule payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const dateLayout = "2006-01-02"

// xmlSchedule mirrors the fixed schema the extraction prompt requests.
type xmlSchedule struct {
	XMLName   xml.Name `xml:"schedule"`
	DateRange struct {
		StartDate string `xml:"start_date"`
		EndDate   string `xml:"end_date"`
	} `xml:"date_range"`
	Events struct {
		Event []xmlEvent `xml:"event"`
	} `xml:"events"`
}

type xmlEvent struct {
	Day         string `xml:"day"`
	Date        string `xml:"date"`
	Time        string `xml:"time"`
	Timezone    string `xml:"timezone"`
	Title       string `xml:"title"`
	Description string `xml:"description"`
}

// Parse converts a raw extraction payload into a ScheduleDocument.
//
// Malformed top-level markup rejects the whole payload. Individual event
// blocks degrade instead: an event without a title is dropped (logged),
// and an event whose time or timezone cannot be normalized keeps its
// title and description but has no resolved UTC instant. One bad entry
// never loses an otherwise good submission.
func Parse(raw string) (*model.ScheduleDocument, error) {
	payload := stripCodeFences(raw)

	var parsed xmlSchedule
	if err := xml.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, &ParseError{Kind: Malformed, Err: err}
	}

	doc := &model.ScheduleDocument{}
	doc.StartDate = parseDate(parsed.DateRange.StartDate)
	doc.EndDate = parseDate(parsed.DateRange.EndDate)
	if doc.StartDate != nil && doc.EndDate != nil && doc.StartDate.After(*doc.EndDate) {
		log.Printf("Schedule date range inverted (%s > %s), dropping range",
			parsed.DateRange.StartDate, parsed.DateRange.EndDate)
		doc.StartDate = nil
		doc.EndDate = nil
	}

	for _, ev := range parsed.Events.Event {
		title := strings.TrimSpace(ev.Title)
		if title == "" {
			log.Printf("Dropping schedule event without title (day=%q time=%q)", ev.Day, ev.Time)
			continue
		}

		event := model.ScheduleEvent{
			DayName:     strings.TrimSpace(ev.Day),
			Date:        parseDate(ev.Date),
			RawTime:     strings.TrimSpace(ev.Time),
			Timezone:    strings.TrimSpace(ev.Timezone),
			Title:       title,
			Description: strings.TrimSpace(ev.Description),
		}

		if event.Date != nil && event.RawTime != "" {
			instant, err := Normalize(*event.Date, event.RawTime, event.Timezone)
			if err != nil {
				// Degrade, don't discard: the title is still useful to a reviewer.
				log.Printf("Could not normalize time for event %q: %v", event.Title, err)
			} else {
				event.UTCInstant = &instant
			}
		}

		doc.Events = append(doc.Events, event)
	}

	return doc, nil
}

func parseDate(raw string) *time.Time {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		log.Printf("Could not parse schedule date %q: %v", raw, err)
		return nil
	}
	return &t
}

// stripCodeFences removes a surrounding markdown code block. The vision
// model tends to wrap its XML in ```xml fences despite the prompt.
func stripCodeFences(raw string) string {
	content := strings.TrimSpace(raw)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	lines := strings.Split(content, "\n")
	var kept []string
	inBlock := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				break
			}
			inBlock = true
			continue
		}
		if inBlock {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
