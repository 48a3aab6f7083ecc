package proc

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/tcolgate/mp3"
)

// Prober inspects episode audio on the CDN.
type Prober struct {
	HTTPClient *http.Client
}

// NewProber creates a prober with a fixed request timeout.
func NewProber(timeout time.Duration) *Prober {
	return &Prober{HTTPClient: &http.Client{Timeout: timeout}}
}

// Verify checks the audio URL responds and reports its size in bytes.
func (p *Prober) Verify(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("can't create request: %w", err)
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}

	return resp.ContentLength, nil
}

// Duration measures the episode length in seconds. It prefers the TLEN id3
// frame and falls back to walking the mpeg frames.
func (p *Prober) Duration(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("can't create request: %w", err)
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}

	tag, err := id3v2.ParseReader(resp.Body, id3v2.Options{Parse: true, ParseFrames: []string{"TLEN"}})
	if err == nil {
		if tlen := tag.GetTextFrame("TLEN").Text; tlen != "" {
			if ms, cerr := strconv.Atoi(tlen); cerr == nil && ms > 0 {
				return (ms + 500) / 1000, nil
			}
		}
	}

	// no usable TLEN frame, sum frame durations instead
	var total time.Duration
	var skipped int
	dec := mp3.NewDecoder(resp.Body)
	var frame mp3.Frame
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
	}

	if total == 0 {
		return 0, fmt.Errorf("no mpeg frames in %s", url)
	}
	return int(total.Round(time.Second) / time.Second), nil
}
