package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/media-grab-go/internal/domain"
)

const videoPageHTML = `<!DOCTYPE html><html><head>
<meta property="og:title" content="Dance clip" />
<meta property="og:description" content="a description" />
<meta property="og:image" content="https://cdn.example.com/thumb.jpg" />
<meta property="og:video" content="https://cdn.example.com/clip.mp4?tk=1&amp;x=2" />
</head><body></body></html>`

const photoPageHTML = `<!DOCTYPE html><html><head>
<meta property="og:title" content="A pin" />
<meta property="og:image" content="https://i.example.com/orig.jpg" />
</head><body></body></html>`

func TestHTMLMetaStrategy_Video(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Strategies must present a browser identity.
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		fmt.Fprint(w, videoPageHTML)
	}))
	defer srv.Close()

	s := NewHTMLMetaStrategy(srv.Client())
	desc, err := s.Resolve(context.Background(), domain.ClassifiedURL{
		URL:      srv.URL,
		Platform: domain.PlatformTikTok,
		Kind:     domain.KindVideo,
	})

	require.NoError(t, err)
	assert.Equal(t, "Dance clip", desc.Title)
	assert.Equal(t, "a description", desc.Description)
	assert.Equal(t, "https://cdn.example.com/thumb.jpg", desc.ThumbnailURL)
	require.Len(t, desc.CandidateURLs, 1)
	// HTML entity escaping is undone before the URL is used.
	assert.Equal(t, "https://cdn.example.com/clip.mp4?tk=1&x=2", desc.CandidateURLs[0])
	assert.True(t, desc.IsVideo)
}

func TestHTMLMetaStrategy_PhotoFallsBackToImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, photoPageHTML)
	}))
	defer srv.Close()

	s := NewHTMLMetaStrategy(srv.Client())
	desc, err := s.Resolve(context.Background(), domain.ClassifiedURL{
		URL:      srv.URL,
		Platform: domain.PlatformPinterest,
		Kind:     domain.KindPhoto,
	})

	require.NoError(t, err)
	require.Len(t, desc.CandidateURLs, 1)
	assert.Equal(t, "https://i.example.com/orig.jpg", desc.CandidateURLs[0])
	assert.Equal(t, domain.KindPhoto, desc.Kind)
}

func TestHTMLMetaStrategy_NoMediaTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>nothing here</title></head></html>`)
	}))
	defer srv.Close()

	s := NewHTMLMetaStrategy(srv.Client())
	_, err := s.Resolve(context.Background(), domain.ClassifiedURL{
		URL:      srv.URL,
		Platform: domain.PlatformInstagram,
		Kind:     domain.KindVideo,
	})
	assert.ErrorIs(t, err, domain.ErrNoCandidates)
}

func TestHTMLMetaStrategy_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewHTMLMetaStrategy(srv.Client())
	_, err := s.Resolve(context.Background(), domain.ClassifiedURL{
		URL:      srv.URL,
		Platform: domain.PlatformInstagram,
		Kind:     domain.KindVideo,
	})
	assert.Error(t, err)
}
