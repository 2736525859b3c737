package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// ProgressFunc receives byte counts while a transfer runs. total is -1
// when the server sent no Content-Length.
type ProgressFunc func(written, total int64)

// platformReferers keeps CDNs that validate the Referer header happy.
var platformReferers = map[domain.Platform]string{
	domain.PlatformTikTok:    "https://www.tiktok.com/",
	domain.PlatformInstagram: "https://www.instagram.com/",
	domain.PlatformYouTube:   "https://www.youtube.com/",
	domain.PlatformPinterest: "https://www.pinterest.com/",
}

// DirectMethod streams a candidate URL straight to disk. It is the
// cheapest acquisition method and always tried first. 4xx responses are
// terminal: the candidate is dead and retrying cannot revive it.
type DirectMethod struct {
	client   *http.Client
	policy   domain.RetryPolicy
	progress ProgressFunc
}

func NewDirectMethod(client *http.Client, policy domain.RetryPolicy, progress ProgressFunc) *DirectMethod {
	return &DirectMethod{client: client, policy: policy, progress: progress}
}

func (m *DirectMethod) Name() string               { return "direct" }
func (m *DirectMethod) Policy() domain.RetryPolicy { return m.policy }

func (m *DirectMethod) Fetch(ctx context.Context, desc *domain.ContentDescriptor, candidateURL, destPath string) error {
	req, err := newBrowserRequest(ctx, candidateURL, platformReferers[desc.Platform])
	if err != nil {
		return domain.Terminal(err)
	}
	req.Header.Set("Accept", "video/mp4,video/webm,video/*;q=0.9,image/*;q=0.9,*/*;q=0.8")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		drainAndClose(resp.Body)
		return domain.Terminal(fmt.Errorf("candidate returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent:
		drainAndClose(resp.Body)
		return fmt.Errorf("candidate returned status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}

	var reader io.Reader = resp.Body
	if m.progress != nil {
		reader = &progressReader{
			inner:    resp.Body,
			total:    resp.ContentLength,
			progress: m.progress,
		}
	}

	written, err := io.Copy(out, reader)
	closeErr := out.Close()
	if err != nil {
		os.Remove(destPath)
		return fmt.Errorf("transfer interrupted after %d bytes: %w", written, err)
	}
	if closeErr != nil {
		os.Remove(destPath)
		return closeErr
	}

	// A body of a few hundred bytes is an error page, not media.
	if written < 1024 {
		os.Remove(destPath)
		return fmt.Errorf("candidate returned %d bytes, not media", written)
	}
	return nil
}

type progressReader struct {
	inner    io.Reader
	total    int64
	written  int64
	progress ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.written += int64(n)
		r.progress(r.written, r.total)
	}
	return n, err
}
