// Package proc fetches episode records from the Digg Daily API, normalizes
// them into the podcast model and keeps the last good list in a store.
package proc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/podcast"
)

// apiResponse is the envelope returned by the episodes endpoint. Records are
// kept raw so a single malformed one can't fail the whole decode.
type apiResponse struct {
	Episodes []json.RawMessage `json:"episodes"`
}

type rawEpisode struct {
	EpisodeID      string      `json:"episode_id"`
	EpisodeNumber  json.Number `json:"episode_number"`
	FileName       string      `json:"file_name"`
	PublishedDate  string      `json:"published_date"`
	PublishedState string      `json:"published_state"`
}

// Rejection describes a raw record dropped during normalization.
type Rejection struct {
	Raw    json.RawMessage
	Reason string
}

// Client talks to the Digg Daily API and falls back to the store when the
// API is unreachable.
type Client struct {
	Endpoint  string
	UserAgent string
	Store     EpisodeStore

	HTTPClient *http.Client
}

// NewClient creates an api client with a fixed request timeout.
func NewClient(endpoint, userAgent string, timeout time.Duration, store EpisodeStore) *Client {
	return &Client{
		Endpoint:   endpoint,
		UserAgent:  userAgent,
		Store:      store,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

var fileDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Fetch loads the episode list from the API, newest first. Any transport or
// decode failure falls back to the cached copy, a fetch never fails hard.
// On success the store is rewritten with the full list.
func (c *Client) Fetch(ctx context.Context) ([]podcast.Episode, []Rejection) {
	raws, err := c.fetchRemote(ctx)
	if err != nil {
		log.Printf("[WARN] api fetch failed, falling back to cache, %v", err)
		return c.loadCached(), nil
	}

	episodes, rejected := Normalize(raws)
	for _, r := range rejected {
		log.Printf("[WARN] dropped episode record, %s", r.Reason)
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].PublishedDate > episodes[j].PublishedDate
	})

	if err := c.Store.Save(episodes); err != nil {
		log.Printf("[WARN] can't write episode cache, %v", err)
	}

	return episodes, rejected
}

// Latest returns the most recent episode, or nil if none are available.
func (c *Client) Latest(ctx context.Context) *podcast.Episode {
	episodes, _ := c.Fetch(ctx)
	if len(episodes) == 0 {
		return nil
	}
	return &episodes[0]
}

func (c *Client) fetchRemote(ctx context.Context) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("can't create request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("can't decode response: %w", err)
	}

	return body.Episodes, nil
}

func (c *Client) loadCached() []podcast.Episode {
	episodes, err := c.Store.Load()
	if err != nil {
		log.Printf("[WARN] can't load episode cache, %v", err)
		return []podcast.Episode{}
	}
	if episodes == nil {
		episodes = []podcast.Episode{}
	}
	return episodes
}

// Normalize converts raw API records into episodes, partitioning out the
// records that are missing required fields or fail coercion.
func Normalize(raws []json.RawMessage) ([]podcast.Episode, []Rejection) {
	episodes := make([]podcast.Episode, 0, len(raws))
	var rejected []Rejection

	for _, raw := range raws {
		episode, err := normalizeRecord(raw)
		if err != nil {
			rejected = append(rejected, Rejection{Raw: raw, Reason: err.Error()})
			continue
		}
		episodes = append(episodes, episode)
	}

	return episodes, rejected
}

func normalizeRecord(raw json.RawMessage) (podcast.Episode, error) {
	var rec rawEpisode
	if err := json.Unmarshal(raw, &rec); err != nil {
		return podcast.Episode{}, fmt.Errorf("invalid record: %w", err)
	}

	if rec.EpisodeID == "" {
		return podcast.Episode{}, fmt.Errorf("missing episode_id")
	}
	if rec.FileName == "" {
		return podcast.Episode{}, fmt.Errorf("missing file_name")
	}
	if rec.PublishedDate == "" {
		return podcast.Episode{}, fmt.Errorf("missing published_date")
	}

	var number int
	if rec.EpisodeNumber != "" {
		n, err := rec.EpisodeNumber.Int64()
		if err != nil {
			return podcast.Episode{}, fmt.Errorf("invalid episode_number %q", rec.EpisodeNumber)
		}
		number = int(n)
	}

	// prefer the date token baked into the file name, e.g.
	// DiggDaily_2026-02-13_093616_final.mp3
	date := fileDateRe.FindString(rec.FileName)
	if date == "" {
		date = rec.PublishedDate
		if len(date) > 10 {
			date = date[:10]
		}
	}

	title := fmt.Sprintf("Digg Daily - Episode %d", number)
	if dt, err := time.Parse("2006-01-02", date); err == nil {
		title = fmt.Sprintf("Digg Daily for %s", dt.Format("January 02, 2006"))
	}

	state := rec.PublishedState
	if state == "" {
		state = podcast.StateDraft
	}

	return podcast.Episode{
		EpisodeID:       rec.EpisodeID,
		EpisodeNumber:   number,
		Title:           title,
		Date:            date,
		PublishedDate:   rec.PublishedDate,
		PublishedState:  state,
		FileName:        rec.FileName,
		Description:     title + ".",
		DurationSeconds: podcast.DefaultDurationSeconds,
	}, nil
}
