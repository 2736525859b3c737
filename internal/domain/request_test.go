package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFetchRequest(t *testing.T) {
	req := NewFetchRequest("https://www.tiktok.com/@user/video/123")
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, StatusUnresolved, req.Status)
	assert.True(t, req.IsPending())
	assert.False(t, req.IsTerminal())
}

func TestFetchRequest_Lifecycle(t *testing.T) {
	req := NewFetchRequest("https://www.instagram.com/reel/abc/")

	req.MarkResolving()
	assert.Equal(t, StatusResolving, req.Status)
	require.NotNil(t, req.StartedAt)

	desc := &ContentDescriptor{
		ID:       "abc",
		Platform: PlatformInstagram,
		Kind:     KindVideo,
		Title:    "a reel",
		Author:   "someone",
	}
	req.MarkResolved(desc)
	assert.Equal(t, StatusResolved, req.Status)
	assert.Equal(t, "abc", req.ContentID)
	assert.Equal(t, "a reel", req.Title)

	req.MarkAcquiring()
	req.MarkAcquired("/tmp/instagram_video_abc.mp4", 204800, KindVideo)
	assert.Equal(t, StatusAcquired, req.Status)
	assert.Equal(t, int64(204800), req.ByteSize)

	req.MarkDelivered(TransmitAttachment)
	assert.Equal(t, StatusDelivered, req.Status)
	require.NotNil(t, req.FinishedAt)

	req.MarkCleaned()
	assert.Equal(t, StatusCleaned, req.Status)
	assert.Empty(t, req.FilePath)
	assert.True(t, req.IsTerminal())
}

func TestFetchRequest_FailedMessageIsClassified(t *testing.T) {
	req := NewFetchRequest("https://www.tiktok.com/@user/video/123")
	req.MarkFailed(&ExhaustedSourcesError{Cause: assert.AnError})

	assert.Equal(t, StatusFailed, req.Status)
	// User-facing message must be a classified string, not the raw error.
	assert.NotContains(t, req.ErrorMessage, assert.AnError.Error())
	assert.NotEmpty(t, req.ErrorMessage)
}

func TestFetchRequest_IllegalTransitionsIgnored(t *testing.T) {
	req := NewFetchRequest("https://www.tiktok.com/@user/video/123")

	// Skipping straight to a post-acquisition outcome is not a legal move.
	req.MarkDelivered(TransmitStreamed)
	assert.Equal(t, StatusUnresolved, req.Status)
	assert.Empty(t, req.Mode)
	assert.Nil(t, req.FinishedAt)

	req.MarkCleaned()
	assert.Equal(t, StatusUnresolved, req.Status)

	// Terminal requests stay terminal.
	req.MarkResolving()
	req.MarkFailed(assert.AnError)
	req.MarkCleaned()
	require.Equal(t, StatusCleaned, req.Status)
	req.MarkResolving()
	assert.Equal(t, StatusCleaned, req.Status)
}

func TestCanTransition(t *testing.T) {
	valid := [][2]FetchStatus{
		{StatusUnresolved, StatusResolving},
		{StatusResolving, StatusResolved},
		{StatusResolving, StatusFailed},
		{StatusAcquired, StatusDelivered},
		{StatusAcquired, StatusRejected},
		{StatusAcquired, StatusFailed},
		{StatusDelivered, StatusCleaned},
		{StatusRejected, StatusCleaned},
		{StatusFailed, StatusCleaned},
	}
	for _, pair := range valid {
		assert.True(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	invalid := [][2]FetchStatus{
		{StatusUnresolved, StatusAcquired},
		{StatusCleaned, StatusResolving},
		{StatusDelivered, StatusFailed},
		{StatusResolved, StatusDelivered},
	}
	for _, pair := range invalid {
		assert.False(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}
