package source

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// errNoFetcher is returned when an Instagram input arrives but no caption
// fetcher was configured.
var errNoFetcher = fmt.Errorf("no caption fetcher configured")

// instagramURLRegex matches post, reel, and tv links. After the shortcode
// the URL may end, continue with more path, or carry a query string or
// fragment directly (share links often skip the trailing slash).
var instagramURLRegex = regexp.MustCompile(`(?i)^https?://(www\.)?instagram\.com/(p|reel|tv)/[A-Za-z0-9_-]+([/?#].*)?$`)

// IsInstagramURL reports whether the input looks like an Instagram post URL.
func IsInstagramURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return instagramURLRegex.MatchString(s)
}

// CleanURL strips tracking query parameters, fragments, and the trailing
// slash from an Instagram URL. The cleaned form is what lands in
// source_url frontmatter.
func CleanURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String()
}

// Shortcode extracts the post shortcode from an Instagram URL
// (e.g. https://www.instagram.com/reel/DRZh6N2EhdO → DRZh6N2EhdO).
func Shortcode(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid instagram url: %w", err)
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[1], nil
	}
	return "", fmt.Errorf("could not extract shortcode from instagram url: %s", rawURL)
}
