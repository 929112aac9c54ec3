package store

import (
	"fmt"
	"strings"
	"time"
)

// Partition is the date+type path scheme records are laid out under. It is
// computed once per event and reused for whichever destination the event
// routes to, so curated and quarantine layouts stay aligned.
type Partition struct {
	Year      string
	Month     string
	Day       string
	EventType string
	EventID   string
}

// NewPartition derives a partition from the source object's key when it
// already carries year=/month=/day= segments (the intake stage's layout),
// falling back to the processing time otherwise.
func NewPartition(sourceKey, eventType, eventID string, now time.Time) Partition {
	p := Partition{EventType: eventType, EventID: eventID}

	for _, segment := range strings.Split(sourceKey, "/") {
		switch {
		case strings.HasPrefix(segment, "year="):
			p.Year = strings.TrimPrefix(segment, "year=")
		case strings.HasPrefix(segment, "month="):
			p.Month = strings.TrimPrefix(segment, "month=")
		case strings.HasPrefix(segment, "day="):
			p.Day = strings.TrimPrefix(segment, "day=")
		}
	}

	if p.Year == "" || p.Month == "" || p.Day == "" {
		now = now.UTC()
		p.Year = fmt.Sprintf("%04d", now.Year())
		p.Month = fmt.Sprintf("%02d", int(now.Month()))
		p.Day = fmt.Sprintf("%02d", now.Day())
	}
	return p
}

// Key renders the destination object key for the given file extension.
func (p Partition) Key(ext string) string {
	return fmt.Sprintf("year=%s/month=%s/day=%s/type=%s/%s.%s",
		p.Year, p.Month, p.Day, p.EventType, p.EventID, ext)
}
