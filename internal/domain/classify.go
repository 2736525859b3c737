package domain

import (
	"net/url"
	"regexp"
	"strings"
)

// ClassifiedURL is the result of matching a URL against the platform
// pattern rules. ContentID may be empty for short links that only resolve
// after a redirect.
type ClassifiedURL struct {
	URL       string
	Platform  Platform
	Kind      ContentKind
	ContentID string
}

// classifyRule maps a URL shape to (platform, kind). Rules are checked in
// order; more specific shapes (photo, story) come before the generic
// video fallbacks, and the first match wins.
type classifyRule struct {
	pattern  *regexp.Regexp
	platform Platform
	kind     ContentKind
}

var classifyRules = []classifyRule{
	// TikTok photo posts and slideshows before the catch-all video rules.
	{regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?tiktok\.com/(?:@[\w.-]+/)?photo/(\d+)`), PlatformTikTok, KindPhoto},
	{regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?tiktok\.com/@[\w.-]+/slideshow/(\d+)`), PlatformTikTok, KindCarousel},
	{regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?tiktok\.com/@[\w.-]+/video/(\d+)`), PlatformTikTok, KindVideo},
	{regexp.MustCompile(`(?i)^https?://(?:vm|vt)\.tiktok\.com/([\w-]+)`), PlatformTikTok, KindVideo},
	{regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?tiktok\.com/(?:v|t|share)/(\w+)`), PlatformTikTok, KindVideo},
	{regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?tiktok\.com/`), PlatformTikTok, KindVideo},

	// Instagram: stories and reels are unambiguous; /p/ posts default to
	// photo, carousel detection is left to the strategies.
	{regexp.MustCompile(`(?i)^https?://(?:www\.)?instagr(?:am\.com|\.am)/stories/[\w.-]+/(\d+)`), PlatformInstagram, KindStory},
	{regexp.MustCompile(`(?i)^https?://(?:www\.)?instagr(?:am\.com|\.am)/reels?/([\w-]+)`), PlatformInstagram, KindVideo},
	{regexp.MustCompile(`(?i)^https?://(?:www\.)?instagr(?:am\.com|\.am)/tv/([\w-]+)`), PlatformInstagram, KindVideo},
	{regexp.MustCompile(`(?i)^https?://(?:www\.)?instagr(?:am\.com|\.am)/p/([\w-]+)`), PlatformInstagram, KindPhoto},
	{regexp.MustCompile(`(?i)^https?://(?:www\.)?instagr(?:am\.com|\.am)/`), PlatformInstagram, KindUnknown},

	// YouTube: music host first so audio wins over the generic video rules.
	{regexp.MustCompile(`(?i)^https?://music\.youtube\.com/watch`), PlatformYouTube, KindAudio},
	{regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?youtube\.com/shorts/([\w-]+)`), PlatformYouTube, KindVideo},
	{regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?youtube\.com/(?:watch|details)`), PlatformYouTube, KindVideo},
	{regexp.MustCompile(`(?i)^https?://(?:www\.|m\.)?youtube\.com/v/([\w-]+)`), PlatformYouTube, KindVideo},
	{regexp.MustCompile(`(?i)^https?://youtu\.be/([\w-]+)`), PlatformYouTube, KindVideo},

	// Pinterest pins default to photo; video pins are detected during
	// resolution.
	{regexp.MustCompile(`(?i)^https?://(?:[\w-]+\.)?pinterest\.[\w.]+/pin/(\d+)`), PlatformPinterest, KindPhoto},
	{regexp.MustCompile(`(?i)^https?://pin\.it/([\w]+)`), PlatformPinterest, KindPhoto},
}

// Classify matches a raw URL against the ordered platform rules. It never
// performs network I/O; URLs that match no rule fail with ErrInvalidURL.
func Classify(rawURL string) (ClassifiedURL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ClassifiedURL{}, ErrInvalidURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ClassifiedURL{}, ErrInvalidURL
	}

	for _, rule := range classifyRules {
		if !rule.pattern.MatchString(rawURL) {
			continue
		}
		return ClassifiedURL{
			URL:       rawURL,
			Platform:  rule.platform,
			Kind:      rule.kind,
			ContentID: extractContentID(rule, parsed, rawURL),
		}, nil
	}
	return ClassifiedURL{}, ErrInvalidURL
}

func extractContentID(rule classifyRule, parsed *url.URL, rawURL string) string {
	// YouTube carries the id in the query string for /watch URLs.
	if rule.platform == PlatformYouTube {
		if v := parsed.Query().Get("v"); v != "" {
			return v
		}
	}
	if m := rule.pattern.FindStringSubmatch(rawURL); len(m) > 1 {
		return m[1]
	}
	// TikTok short links and redirects often bury a numeric id elsewhere
	// in the URL.
	if rule.platform == PlatformTikTok {
		if m := tiktokNumericID.FindString(rawURL); m != "" {
			return m
		}
	}
	return ""
}

var tiktokNumericID = regexp.MustCompile(`\d{10,20}`)

// ValidatePlatform checks if a platform is one of the supported set.
func ValidatePlatform(platform Platform) bool {
	switch platform {
	case PlatformTikTok, PlatformYouTube, PlatformInstagram, PlatformPinterest:
		return true
	}
	return false
}
