package instagramimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/orgball2608/insta-profile-proxy/pkg/errors"
	"github.com/orgball2608/insta-profile-proxy/pkg/formatter"
	"github.com/tidwall/gjson"
)

const (
	profilePath = "/api/instagram/profile"
	postsPath   = "/api/instagram/posts"
)

type profileRequest struct {
	Username string `json:"username"`
}

type postsRequest struct {
	Username string `json:"username"`
	MaxID    string `json:"maxId"`
}

func (ig *InstaImpl) FetchProfile(ctx context.Context, username string) ([]byte, error) {
	ig.logger.Info("Fetching Instagram profile", "username", username)
	return ig.postJSON(ctx, profilePath, profileRequest{Username: username})
}

func (ig *InstaImpl) FetchPosts(ctx context.Context, username string) ([]byte, error) {
	ig.logger.Info("Fetching Instagram posts", "username", username)
	return ig.postJSON(ctx, postsPath, postsRequest{Username: username})
}

func (ig *InstaImpl) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Internal("failed to encode upstream request", err)
	}

	ctx, cancel := withTimeout(ctx, ig.apiTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ig.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal("failed to build upstream request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-rapidapi-key", ig.apiKey)
	req.Header.Set("x-rapidapi-host", ig.host)
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := ig.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			ig.logger.Warn("Instagram API request timed out", "path", path, "timeout", ig.apiTimeout)
			return nil, errors.Timeout("Request timeout", err)
		}
		ig.logger.Error("Instagram API request failed", "path", path, "error", err)
		return nil, errors.Internal("failed to reach Instagram API", err)
	}
	defer resp.Body.Close()

	data, tooLarge, err := readLimited(resp.Body, ig.maxJSONBytes)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Timeout("Request timeout", err)
		}
		return nil, errors.Internal("failed to read Instagram API response", err)
	}
	if tooLarge {
		ig.logger.Error("Instagram API response exceeds size limit", "path", path, "limit", ig.maxJSONBytes)
		return nil, errors.Upstream(http.StatusBadGateway, "Instagram API error: response too large")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ig.logger.Error("Instagram API error",
			"path", path,
			"status", resp.StatusCode,
			"body", formatter.Truncate(string(data), 500))
		return nil, errors.Upstream(resp.StatusCode, fmt.Sprintf("Instagram API error: %s", statusText(resp)))
	}

	if len(bytes.TrimSpace(data)) > 0 && !gjson.ValidBytes(data) {
		ig.logger.Error("Instagram API returned malformed JSON",
			"path", path,
			"body", formatter.Truncate(string(data), 200))
		return nil, errors.Internal("Instagram API returned malformed JSON", nil)
	}

	ig.logger.Debug("Instagram API raw response", "path", path, "bytes", len(data))
	return data, nil
}
