package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackDescriptor_Defaults(t *testing.T) {
	target := ClassifiedURL{
		URL:      "https://www.tiktok.com/@user/video/123",
		Platform: PlatformTikTok,
		Kind:     KindVideo,
	}

	desc := FallbackDescriptor(target)

	assert.NotEmpty(t, desc.ID)
	assert.Equal(t, PlatformTikTok, desc.Platform)
	assert.Equal(t, KindVideo, desc.Kind)
	assert.Empty(t, desc.CandidateURLs)
	assert.NotNil(t, desc.CandidateURLs)
	assert.Zero(t, desc.LikeCount)
	assert.Zero(t, desc.Duration)
	assert.Zero(t, desc.Width)
	assert.False(t, desc.CreatedAt.IsZero())
}

func TestFallbackDescriptor_UnknownKind(t *testing.T) {
	desc := FallbackDescriptor(ClassifiedURL{URL: "https://www.instagram.com/x", Platform: PlatformInstagram})
	assert.Equal(t, KindUnknown, desc.Kind)
	assert.NotEmpty(t, desc.ID)
}

func TestNewDescriptor_UsesContentID(t *testing.T) {
	desc := NewDescriptor(ClassifiedURL{
		URL:       "https://youtu.be/dQw4w9WgXcQ",
		Platform:  PlatformYouTube,
		Kind:      KindVideo,
		ContentID: "dQw4w9WgXcQ",
	})
	assert.Equal(t, "dQw4w9WgXcQ", desc.ID)
	assert.True(t, desc.IsVideo)
}

func TestDescriptorMetadata(t *testing.T) {
	desc := &ContentDescriptor{
		ID:        "abc",
		Title:     "a clip",
		Author:    "someone",
		Platform:  PlatformInstagram,
		Kind:      KindVideo,
		Duration:  12,
		LikeCount: 42,
	}

	meta := desc.Metadata(204800)
	require.Equal(t, int64(204800), meta.ByteSize)
	assert.Equal(t, "abc", meta.ID)
	assert.Equal(t, KindVideo, meta.Kind)
	assert.Equal(t, int64(42), meta.LikeCount)
}
