package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Posts handles POST {username}. Any reachable, parseable upstream answer is a
// success, an empty list included.
func (h *Handler) Posts(c *gin.Context) {
	username, err := bindUsername(c)
	if err != nil {
		fail(c, err)
		return
	}

	body, err := h.instagram.FetchPosts(c.Request.Context(), username)
	if err != nil {
		h.logger.Error("Error fetching Instagram posts", "username", username, "error", err)
		fail(c, err)
		return
	}

	posts := h.schema.NormalizePosts(body)
	h.logger.Info("Fetched Instagram posts", "username", username, "count", len(posts))

	raw := json.RawMessage(bytes.TrimSpace(body))
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}

	c.JSON(http.StatusOK, postsResponse{
		Success:     true,
		Posts:       posts,
		RawResponse: raw,
	})
}
