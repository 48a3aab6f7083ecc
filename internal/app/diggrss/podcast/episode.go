// Package podcast holds the episode model and its derived feed fields.
package podcast

import (
	"fmt"
	"time"
)

// HomepageURL is where feed items link to, Digg Daily episodes have no pages of their own.
const HomepageURL = "https://digg.com"

// DefaultDurationSeconds is used when the true episode length is unknown.
const DefaultDurationSeconds = 300

// Published states reported by the API.
const (
	StatePublished = "PUBLISHED"
	StateDraft     = "DRAFT"
)

// Episode of Digg Daily. Field names and json tags define the on-disk cache
// format, every field written to the cache is read back unchanged.
type Episode struct {
	EpisodeID       string `json:"episode_id"`
	EpisodeNumber   int    `json:"episode_number"`
	Title           string `json:"title"`
	Date            string `json:"date"`           // YYYY-MM-DD
	PublishedDate   string `json:"published_date"` // ISO-8601, may carry a trailing Z
	PublishedState  string `json:"published_state"`
	FileName        string `json:"file_name"`
	Description     string `json:"description"`
	DurationSeconds int    `json:"duration_seconds"`
	SizeBytes       int64  `json:"size_bytes,omitempty"` // filled in by probing, 0 when unknown
}

// GUID identifies the episode in the feed.
func (e Episode) GUID() string {
	return e.EpisodeID
}

// AudioURL addresses the episode audio on the CDN.
func (e Episode) AudioURL(cdnBase string) string {
	return fmt.Sprintf("%s/%s/%s", cdnBase, e.EpisodeID, e.FileName)
}

// PubDateRFC2822 formats the publication date for RSS, falling back to the
// current time when the stored date doesn't parse.
func (e Episode) PubDateRFC2822() string {
	const layout = "Mon, 02 Jan 2006 15:04:05 +0000"

	for _, in := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if dt, err := time.Parse(in, e.PublishedDate); err == nil {
			return dt.UTC().Format(layout)
		}
	}
	return time.Now().UTC().Format(layout)
}

// DurationFormatted renders the duration as M:SS, or H:MM:SS past an hour.
func (e Episode) DurationFormatted() string {
	h := e.DurationSeconds / 3600
	m := e.DurationSeconds % 3600 / 60
	s := e.DurationSeconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
