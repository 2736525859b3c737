package infrastructure

import (
	"context"

	"github.com/kkdai/youtube/v2"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// YouTubeStrategy resolves YouTube videos natively through the innertube
// API, skipping both page scraping and the external extractor. It also
// surfaces music attribution for music.youtube.com targets.
type YouTubeStrategy struct {
	client youtube.Client
}

func NewYouTubeStrategy() *YouTubeStrategy {
	return &YouTubeStrategy{}
}

func (s *YouTubeStrategy) Name() string { return "youtube-native" }

func (s *YouTubeStrategy) Resolve(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	video, err := s.client.GetVideoContext(ctx, target.URL)
	if err != nil {
		return nil, err
	}

	desc := domain.NewDescriptor(target)
	desc.ID = video.ID
	desc.Title = video.Title
	desc.Author = video.Author
	desc.DisplayName = video.Author
	desc.Description = video.Description
	desc.Duration = int(video.Duration.Seconds())
	desc.ViewCount = int64(video.Views)
	if len(video.Thumbnails) > 0 {
		desc.ThumbnailURL = video.Thumbnails[len(video.Thumbnails)-1].URL
	}
	if target.Kind == domain.KindAudio {
		desc.MusicTitle = video.Title
		desc.MusicAuthor = video.Author
	}

	// Muxed formats only: separate audio/video streams would need a merge
	// step this pipeline does not perform.
	formats := video.Formats.WithAudioChannels()
	formats.Sort()
	for i := range formats {
		format := &formats[i]
		streamURL, err := s.client.GetStreamURLContext(ctx, video, format)
		if err != nil {
			continue
		}
		desc.CandidateURLs = appendUnique(desc.CandidateURLs, streamURL)
		if desc.Width == 0 {
			desc.Width = format.Width
			desc.Height = format.Height
		}
		// Two ranked candidates are plenty; more just slows exhaustion.
		if len(desc.CandidateURLs) >= 2 {
			break
		}
	}

	if !desc.HasCandidates() {
		return nil, domain.ErrNoCandidates
	}
	return desc, nil
}
