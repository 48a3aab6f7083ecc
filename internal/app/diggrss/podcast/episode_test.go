package podcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioURL(t *testing.T) {
	e := Episode{EpisodeID: "abc123", FileName: "DiggDaily_2026-02-13_093616_final.mp3"}
	assert.Equal(t, "https://cdn.example.com/episodes/abc123/DiggDaily_2026-02-13_093616_final.mp3",
		e.AudioURL("https://cdn.example.com/episodes"))
}

func TestGUID(t *testing.T) {
	e := Episode{EpisodeID: "abc123"}
	assert.Equal(t, "abc123", e.GUID())
}

func TestPubDateRFC2822(t *testing.T) {
	tbl := []struct {
		published string
		expected  string
	}{
		{"2026-02-13T09:00:00Z", "Fri, 13 Feb 2026 09:00:00 +0000"},
		{"2026-02-13T09:00:00", "Fri, 13 Feb 2026 09:00:00 +0000"},
		{"2026-02-13T09:00:00+02:00", "Fri, 13 Feb 2026 07:00:00 +0000"},
	}

	for _, tt := range tbl {
		e := Episode{PublishedDate: tt.published}
		assert.Equal(t, tt.expected, e.PubDateRFC2822())
	}
}

func TestPubDateRFC2822Invalid(t *testing.T) {
	e := Episode{PublishedDate: "not a date"}
	res := e.PubDateRFC2822()

	// falls back to the current time, still a valid RFC 2822 stamp
	parsed, err := time.Parse("Mon, 02 Jan 2006 15:04:05 +0000", res)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
}

func TestDurationFormatted(t *testing.T) {
	tbl := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{65, "1:05"},
		{300, "5:00"},
		{3600, "1:00:00"},
		{3661, "1:01:01"},
	}

	for _, tt := range tbl {
		e := Episode{DurationSeconds: tt.seconds}
		assert.Equal(t, tt.expected, e.DurationFormatted(), "for %d seconds", tt.seconds)
	}
}
