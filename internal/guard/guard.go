package guard

import (
	"errors"
	"net/url"
	"strings"

	apperrors "github.com/orgball2608/insta-profile-proxy/pkg/errors"
)

// DefaultAllowedDomains are the Meta/Instagram media hosts the image proxy
// is willing to fetch from.
var DefaultAllowedDomains = []string{
	"instagram.com",
	"cdninstagram.com",
	"fbcdn.net",
	"scontent",
}

// Guard decides whether a caller-supplied URL may be proxied.
//
// Matching is by substring so the many CDN host patterns
// (scontent-gru2-1.cdninstagram.com, instagram.fpoa1-1.fna.fbcdn.net, ...)
// pass without enumerating them. Entries containing a dot must begin their
// match on a label boundary, which keeps notinstagram.com out. Dotless tokens
// such as "scontent" match anywhere in the hostname.
type Guard struct {
	domains []string
}

func New(domains []string) *Guard {
	cleaned := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			cleaned = append(cleaned, d)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultAllowedDomains...)
	}
	return &Guard{domains: cleaned}
}

// Check parses raw and returns the parsed URL when its host is allowed.
// Parse problems are invalid_url errors; disallowed hosts are forbidden_domain.
func (g *Guard) Check(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, apperrors.InvalidURL("Invalid URL format", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.InvalidURL("Invalid URL format", errors.New("unsupported scheme "+u.Scheme))
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, apperrors.InvalidURL("Invalid URL format", errors.New("missing host"))
	}

	if !g.Allowed(host) {
		return nil, apperrors.ForbiddenDomain(host)
	}
	return u, nil
}

// Allowed reports whether hostname matches the allow-list.
func (g *Guard) Allowed(hostname string) bool {
	hostname = strings.ToLower(hostname)
	for _, d := range g.domains {
		if matches(hostname, d) {
			return true
		}
	}
	return false
}

func matches(host, entry string) bool {
	if !strings.Contains(entry, ".") {
		return strings.Contains(host, entry)
	}
	for offset := 0; offset <= len(host)-len(entry); {
		i := strings.Index(host[offset:], entry)
		if i < 0 {
			return false
		}
		at := offset + i
		if at == 0 || host[at-1] == '.' {
			return true
		}
		offset = at + 1
	}
	return false
}
