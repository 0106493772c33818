package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/insta-profile-proxy/internal/normalizer"
	"github.com/orgball2608/insta-profile-proxy/pkg/errors"
)

// Profile handles POST {username} and answers with the normalized profile.
func (h *Handler) Profile(c *gin.Context) {
	username, err := bindUsername(c)
	if err != nil {
		fail(c, err)
		return
	}

	body, err := h.instagram.FetchProfile(c.Request.Context(), username)
	if err != nil {
		h.logger.Error("Error fetching Instagram profile", "username", username, "error", err)
		fail(c, err)
		return
	}

	if normalizer.IsEmpty(body) {
		h.logger.Warn("Instagram API returned an empty profile", "username", username)
		fail(c, errors.NotFound(msgNoProfile))
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		Success: true,
		Profile: h.schema.NormalizeProfile(body, username),
	})
}
