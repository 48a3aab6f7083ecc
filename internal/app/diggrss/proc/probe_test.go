package proc

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Length", "4815162")
	}))
	defer ts.Close()

	prober := NewProber(time.Second)
	size, err := prober.Verify(context.Background(), ts.URL+"/e1/audio.mp3")
	require.NoError(t, err)
	assert.Equal(t, int64(4815162), size)
}

func TestVerifyNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	prober := NewProber(time.Second)
	_, err := prober.Verify(context.Background(), ts.URL+"/gone.mp3")
	assert.Error(t, err)
}

func TestDurationFromTLEN(t *testing.T) {
	tag := id3v2.NewEmptyTag()
	tag.AddTextFrame("TLEN", id3v2.EncodingUTF8, "65000") // milliseconds

	var audio bytes.Buffer
	_, err := tag.WriteTo(&audio)
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(audio.Bytes()) // nolint
	}))
	defer ts.Close()

	prober := NewProber(time.Second)
	secs, err := prober.Duration(context.Background(), ts.URL+"/e1/audio.mp3")
	require.NoError(t, err)
	assert.Equal(t, 65, secs)
}

func TestDurationNotAudio(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text, no id3 tag and no mpeg frames")) // nolint
	}))
	defer ts.Close()

	prober := NewProber(time.Second)
	_, err := prober.Duration(context.Background(), ts.URL+"/not-audio.txt")
	assert.Error(t, err)
}

func TestDurationUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	prober := NewProber(time.Second)
	_, err := prober.Duration(context.Background(), ts.URL+"/audio.mp3")
	assert.Error(t, err)
}
