package diggrss

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/feed"
	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/podcast"
	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/proc"
	"github.com/pixelnated/digg-daily-rss/internal/configs"
)

type fakeFetcher struct {
	episodes []podcast.Episode
	rejected []proc.Rejection
}

func (f *fakeFetcher) Fetch(_ context.Context) ([]podcast.Episode, []proc.Rejection) {
	return f.episodes, f.rejected
}

type fakeProber struct {
	size     int64
	duration int
	err      error
}

func (p *fakeProber) Verify(_ context.Context, _ string) (int64, error) {
	return p.size, p.err
}

func (p *fakeProber) Duration(_ context.Context, _ string) (int, error) {
	return p.duration, p.err
}

func testApp(t *testing.T, fetcher Fetcher) *App {
	conf := &configs.Conf{}
	conf.API.CDNBase = "https://cdn.example.com/episodes"
	conf.API.Timeout = 1
	conf.Feed.OutputDir = t.TempDir()
	conf.Feed.EnclosureLength = 5000000
	conf.Channel = configs.Channel{Title: "Digg Daily (Official AI Version)", Link: "https://digg.com/diggdaily",
		Description: "test feed", Author: "Digg", Explicit: "false"}

	app, err := NewApplication(conf, fetcher, feed.NewGenerator(conf))
	require.NoError(t, err)
	return app
}

func manyEpisodes(n int) []podcast.Episode {
	episodes := make([]podcast.Episode, n)
	for i := range episodes {
		episodes[i] = podcast.Episode{
			EpisodeID:       fmt.Sprintf("e%02d", n-i),
			EpisodeNumber:   n - i,
			FileName:        fmt.Sprintf("DiggDaily_2026-02-%02d_093616_final.mp3", n-i),
			PublishedDate:   fmt.Sprintf("2026-02-%02dT09:00:00Z", n-i),
			DurationSeconds: podcast.DefaultDurationSeconds,
		}
	}
	return episodes
}

func TestEpisodesLimit(t *testing.T) {
	app := testApp(t, &fakeFetcher{episodes: manyEpisodes(10)})

	episodes := app.Episodes(context.Background(), 3)
	require.Len(t, episodes, 3)
	assert.Equal(t, "e10", episodes[0].EpisodeID)

	assert.Len(t, app.Episodes(context.Background(), 0), 10)
	assert.Len(t, app.Episodes(context.Background(), 50), 10)
}

func TestSaveFeed(t *testing.T) {
	app := testApp(t, &fakeFetcher{episodes: manyEpisodes(2)})

	episodes := app.Episodes(context.Background(), 0)
	path, err := app.SaveFeed(episodes, "feed.xml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(app.Conf.Feed.OutputDir, "feed.xml"), path)

	data, err := os.ReadFile(path) // nolint:gosec
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "<title>Digg Daily (Official AI Version)</title>")
	assert.Contains(t, content, `<guid isPermaLink="false">e02</guid>`)
	assert.Contains(t, content, `<guid isPermaLink="false">e01</guid>`)
}

func TestProbeDurations(t *testing.T) {
	app := testApp(t, &fakeFetcher{})
	app.Prober = &fakeProber{size: 4815162, duration: 287}

	episodes := manyEpisodes(2)
	app.ProbeDurations(context.Background(), episodes)

	for _, e := range episodes {
		assert.Equal(t, 287, e.DurationSeconds)
		assert.Equal(t, int64(4815162), e.SizeBytes)
	}
}

func TestProbeDurationsKeepsDefaultsOnError(t *testing.T) {
	app := testApp(t, &fakeFetcher{})
	app.Prober = &fakeProber{err: fmt.Errorf("cdn says no")}

	episodes := manyEpisodes(1)
	app.ProbeDurations(context.Background(), episodes)

	assert.Equal(t, podcast.DefaultDurationSeconds, episodes[0].DurationSeconds)
	assert.Equal(t, int64(0), episodes[0].SizeBytes)
}

func TestPublishFeedNotConfigured(t *testing.T) {
	app := testApp(t, &fakeFetcher{})

	err := app.PublishFeed(context.Background(), "output/feed.xml")
	assert.EqualError(t, err, "cloud storage is not configured")
}

func TestVerifyEpisodesDoesNotMutate(t *testing.T) {
	app := testApp(t, &fakeFetcher{})
	app.Prober = &fakeProber{size: 123, duration: 42}

	episodes := manyEpisodes(1)
	before := episodes[0]

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	app.VerifyEpisodes(ctx, episodes)

	assert.Equal(t, before, episodes[0])
}
