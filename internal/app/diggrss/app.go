// Package diggrss wires the fetch, render, verify and publish steps.
package diggrss

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/minio/minio-go/v7"

	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/feed"
	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/podcast"
	"github.com/pixelnated/digg-daily-rss/internal/app/diggrss/proc"
	"github.com/pixelnated/digg-daily-rss/internal/configs"
)

// Fetcher loads the ordered episode list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]podcast.Episode, []proc.Rejection)
}

// Prober inspects audio files on the CDN.
type Prober interface {
	Verify(ctx context.Context, url string) (int64, error)
	Duration(ctx context.Context, url string) (int, error)
}

// Publisher uploads the rendered feed to cloud storage.
type Publisher interface {
	UploadFeed(ctx context.Context, objectName, filePath string) (*minio.UploadInfo, error)
}

// App ties the pipeline together.
type App struct {
	Conf      *configs.Conf
	Fetcher   Fetcher
	Generator *feed.Generator
	Prober    Prober
	Publisher Publisher // optional, nil when cloud storage is not configured
}

// NewApplication creates the app with a default prober.
func NewApplication(conf *configs.Conf, fetcher Fetcher, generator *feed.Generator) (*App, error) {
	app := App{
		Conf:      conf,
		Fetcher:   fetcher,
		Generator: generator,
		Prober:    proc.NewProber(time.Duration(conf.API.Timeout) * time.Second),
	}
	return &app, nil
}

// Episodes fetches the current list, newest first, truncated to limit
// (0 keeps everything). Failures degrade to a cached or empty list.
func (a *App) Episodes(ctx context.Context, limit int) []podcast.Episode {
	episodes, rejected := a.Fetcher.Fetch(ctx)
	if len(rejected) > 0 {
		log.Printf("[INFO] dropped %d malformed episode records", len(rejected))
	}

	if limit > 0 && len(episodes) > limit {
		episodes = episodes[:limit]
	}
	return episodes
}

// VerifyEpisodes heads each audio url and logs the outcome.
func (a *App) VerifyEpisodes(ctx context.Context, episodes []podcast.Episode) {
	for _, e := range episodes {
		url := e.AudioURL(a.Conf.API.CDNBase)
		size, err := a.Prober.Verify(ctx, url)
		if err != nil {
			log.Printf("[WARN] %s not reachable, %v", url, err)
			continue
		}
		log.Printf("[INFO] episode %d ok, %s (%.1f MB)", e.EpisodeNumber, url, float64(size)/1024/1024)
	}
}

// ProbeDurations replaces default durations and enclosure sizes with values
// measured from the CDN. Failures leave the defaults in place.
func (a *App) ProbeDurations(ctx context.Context, episodes []podcast.Episode) {
	for i := range episodes {
		url := episodes[i].AudioURL(a.Conf.API.CDNBase)

		if size, err := a.Prober.Verify(ctx, url); err == nil && size > 0 {
			episodes[i].SizeBytes = size
		}

		secs, err := a.Prober.Duration(ctx, url)
		if err != nil {
			log.Printf("[WARN] can't probe duration of %s, %v", url, err)
			continue
		}
		episodes[i].DurationSeconds = secs
	}
}

// SaveFeed renders the feed and writes it to the output dir, returning the
// written path.
func (a *App) SaveFeed(episodes []podcast.Episode, filename string) (string, error) {
	content := a.Generator.Run(episodes)

	if err := os.MkdirAll(a.Conf.Feed.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("can't create output dir %s: %w", a.Conf.Feed.OutputDir, err)
	}

	path := filepath.Join(a.Conf.Feed.OutputDir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { // nolint:gosec
		return "", fmt.Errorf("can't write feed %s: %w", path, err)
	}
	return path, nil
}

// PublishFeed uploads the written feed file to cloud storage.
func (a *App) PublishFeed(ctx context.Context, path string) error {
	if a.Publisher == nil {
		return fmt.Errorf("cloud storage is not configured")
	}

	info, err := a.Publisher.UploadFeed(ctx, filepath.Base(path), path)
	if err != nil {
		return fmt.Errorf("can't upload feed: %w", err)
	}

	log.Printf("[INFO] feed uploaded to %s", info.Location)
	return nil
}
