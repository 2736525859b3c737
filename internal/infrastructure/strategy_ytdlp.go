package infrastructure

import (
	"context"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// ExtractorStrategy resolves through yt-dlp's metadata probe. Slowest of
// the strategies (it spawns a process) but covers every platform the
// extractor knows about.
type ExtractorStrategy struct {
	extractor *Extractor
}

func NewExtractorStrategy(extractor *Extractor) *ExtractorStrategy {
	return &ExtractorStrategy{extractor: extractor}
}

func (s *ExtractorStrategy) Name() string { return "ytdlp" }

func (s *ExtractorStrategy) Resolve(ctx context.Context, target domain.ClassifiedURL) (*domain.ContentDescriptor, error) {
	info, err := s.extractor.Probe(ctx, target.URL)
	if err != nil {
		return nil, err
	}
	desc := descriptorFromInfo(target, info)
	if !desc.HasCandidates() {
		return nil, domain.ErrNoCandidates
	}
	return desc, nil
}

// descriptorFromInfo maps a yt-dlp info JSON onto a descriptor. Every
// field is optional in the info dump, so lookups are tolerant.
func descriptorFromInfo(target domain.ClassifiedURL, info map[string]interface{}) *domain.ContentDescriptor {
	desc := domain.NewDescriptor(target)
	if id := digString(info, "id"); id != "" {
		desc.ID = id
	}
	desc.Title = digString(info, "title")
	desc.Description = digString(info, "description")
	desc.Author = digString(info, "uploader_id")
	if desc.Author == "" {
		desc.Author = digString(info, "uploader")
	}
	desc.DisplayName = digString(info, "uploader")
	desc.LikeCount = digInt(info, "like_count")
	desc.CommentCount = digInt(info, "comment_count")
	desc.ViewCount = digInt(info, "view_count")
	desc.Duration = int(digInt(info, "duration"))
	desc.ThumbnailURL = digString(info, "thumbnail")
	desc.Width = int(digInt(info, "width"))
	desc.Height = int(digInt(info, "height"))
	desc.MusicTitle = digString(info, "track")
	desc.MusicAuthor = digString(info, "artist")

	// The top-level url is the already-selected best format when present.
	if u := digString(info, "url"); u != "" {
		desc.CandidateURLs = appendUnique(desc.CandidateURLs, u)
	}
	// Fall back to scanning formats, best first; only fully muxed entries
	// are usable as direct candidates.
	if formats, ok := dig(info, "formats").([]interface{}); ok {
		for i := len(formats) - 1; i >= 0 && len(desc.CandidateURLs) < 3; i-- {
			format := formats[i]
			if digString(format, "vcodec") == "none" || digString(format, "acodec") == "none" {
				continue
			}
			if u := digString(format, "url"); u != "" {
				desc.CandidateURLs = appendUnique(desc.CandidateURLs, u)
			}
		}
	}
	return desc
}
