package instagramimpl

import (
	"context"
	"net/http"

	"github.com/orgball2608/insta-profile-proxy/internal/domain"
	"github.com/orgball2608/insta-profile-proxy/pkg/errors"
	"github.com/orgball2608/insta-profile-proxy/pkg/formatter"
)

// FetchImage downloads imageURL within the configured image timeout, posing
// as a browser loading an <img> from instagram.com.
func (ig *InstaImpl) FetchImage(ctx context.Context, imageURL string) (*domain.Image, error) {
	ig.logger.Info("Proxying Instagram image", "url", formatter.Truncate(imageURL, 50))

	ctx, cancel := withTimeout(ctx, ig.imageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, errors.Internal("failed to build image request", err)
	}
	req.Header.Set("User-Agent", ig.userAgent)
	req.Header.Set("Referer", "https://www.instagram.com/")
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")
	req.Header.Set("Sec-Fetch-Dest", "image")
	req.Header.Set("Sec-Fetch-Mode", "no-cors")
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	resp, err := ig.images.Do(req)
	if err != nil {
		if errors.IsForbidden(err) {
			return nil, err
		}
		if isTimeout(ctx, err) {
			ig.logger.Warn("Image fetch timed out", "url", formatter.Truncate(imageURL, 50), "timeout", ig.imageTimeout)
			return nil, errors.Timeout("Request timeout", err)
		}
		ig.logger.Error("Image fetch failed", "url", formatter.Truncate(imageURL, 50), "error", err)
		return nil, errors.Internal("failed to fetch image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ig.logger.Error("Failed to fetch Instagram image", "status", resp.StatusCode)
		return nil, errors.Upstream(resp.StatusCode, "Failed to fetch image from source")
	}

	if resp.ContentLength > ig.maxImageBytes {
		ig.logger.Warn("Image exceeds size limit", "bytes", resp.ContentLength, "limit", ig.maxImageBytes)
		return nil, errors.Upstream(http.StatusBadGateway, "Failed to fetch image from source")
	}

	data, tooLarge, err := readLimited(resp.Body, ig.maxImageBytes)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Timeout("Request timeout", err)
		}
		return nil, errors.Internal("failed to read image body", err)
	}
	if tooLarge {
		ig.logger.Warn("Image exceeds size limit", "limit", ig.maxImageBytes)
		return nil, errors.Upstream(http.StatusBadGateway, "Failed to fetch image from source")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = domain.DefaultImageContentType
	}

	return &domain.Image{Data: data, ContentType: contentType}, nil
}

// checkImageRedirect applies the allow-list to every hop, not just the URL
// the caller handed in.
func (ig *InstaImpl) checkImageRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxImageRedirects {
		return errors.Upstream(http.StatusBadGateway, "Failed to fetch image from source")
	}
	if _, err := ig.guard.Check(req.URL.String()); err != nil {
		ig.logger.Warn("Blocked image redirect to unauthorized domain", "host", req.URL.Hostname())
		return errors.ForbiddenDomain(req.URL.Hostname())
	}
	return nil
}
