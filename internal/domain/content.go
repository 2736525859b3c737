package domain

import (
	"fmt"
	"time"
)

// Platform represents the source platform for media content
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformPinterest Platform = "pinterest"
)

// ContentKind represents the kind of media a URL points at
type ContentKind string

const (
	KindVideo    ContentKind = "video"
	KindPhoto    ContentKind = "photo"
	KindStory    ContentKind = "story"
	KindCarousel ContentKind = "carousel"
	KindAudio    ContentKind = "audio"
	KindUnknown  ContentKind = "unknown"
)

// ContentDescriptor is the normalized record of one remote media item.
// Every field has a deterministic default; missing data is represented by
// the zero value, never by omission. A descriptor is created fresh per
// resolution, is immutable once returned, and is consumed exactly once by
// the acquisition engine.
type ContentDescriptor struct {
	ID            string      `json:"id"`
	Platform      Platform    `json:"platform"`
	Kind          ContentKind `json:"kind"`
	Title         string      `json:"title"`
	Author        string      `json:"author"`
	DisplayName   string      `json:"display_name"`
	Description   string      `json:"description"`
	LikeCount     int64       `json:"like_count"`
	CommentCount  int64       `json:"comment_count"`
	ViewCount     int64       `json:"view_count"`
	Duration      int         `json:"duration_seconds"`
	ThumbnailURL  string      `json:"thumbnail_url"`
	CandidateURLs []string    `json:"candidate_urls"`
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	IsVideo       bool        `json:"is_video"`
	SourceURL     string      `json:"source_url"`
	CreatedAt     time.Time   `json:"created_at"`
	MusicTitle    string      `json:"music_title,omitempty"`
	MusicAuthor   string      `json:"music_author,omitempty"`
}

// NewDescriptor creates a descriptor pre-filled with the classification
// result. Strategies start from this and overwrite what they learn.
func NewDescriptor(target ClassifiedURL) *ContentDescriptor {
	return &ContentDescriptor{
		ID:            defaultContentID(target),
		Platform:      target.Platform,
		Kind:          target.Kind,
		IsVideo:       target.Kind == KindVideo || target.Kind == KindStory,
		SourceURL:     target.URL,
		CandidateURLs: []string{},
		CreatedAt:     time.Now(),
	}
}

// FallbackDescriptor is returned when every strategy in a chain is
// exhausted: classification defaults only, no candidates.
func FallbackDescriptor(target ClassifiedURL) *ContentDescriptor {
	d := NewDescriptor(target)
	if d.Kind == "" {
		d.Kind = KindUnknown
	}
	return d
}

func defaultContentID(target ClassifiedURL) string {
	if target.ContentID != "" {
		return target.ContentID
	}
	// Unresolved content still needs a stable, non-empty id for staging
	// filenames and telemetry.
	return fmt.Sprintf("%s_%d", target.Platform, time.Now().Unix())
}

// HasCandidates reports whether at least one candidate media URL was
// resolved.
func (d *ContentDescriptor) HasCandidates() bool {
	return len(d.CandidateURLs) > 0
}

// MediaMetadata is the descriptor subset echoed to delivery collaborators
// alongside an acquired file.
type MediaMetadata struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Author       string      `json:"author"`
	Platform     Platform    `json:"platform"`
	Kind         ContentKind `json:"kind"`
	Duration     int         `json:"duration_seconds"`
	LikeCount    int64       `json:"like_count"`
	CommentCount int64       `json:"comment_count"`
	ViewCount    int64       `json:"view_count"`
	ByteSize     int64       `json:"byte_size"`
}

// AcquisitionResult is the output of a successful acquisition. The file
// at Path exists with Size > 0; ownership transfers to the caller, who
// owns exactly one cleanup call.
type AcquisitionResult struct {
	Path     string
	Size     int64
	Kind     ContentKind
	Metadata MediaMetadata
}

// Metadata builds the delivery metadata record for an acquired file.
func (d *ContentDescriptor) Metadata(size int64) MediaMetadata {
	return MediaMetadata{
		ID:           d.ID,
		Title:        d.Title,
		Author:       d.Author,
		Platform:     d.Platform,
		Kind:         d.Kind,
		Duration:     d.Duration,
		LikeCount:    d.LikeCount,
		CommentCount: d.CommentCount,
		ViewCount:    d.ViewCount,
		ByteSize:     size,
	}
}
