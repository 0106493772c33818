package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/insta-profile-proxy/pkg/errors"
	"github.com/orgball2608/insta-profile-proxy/pkg/formatter"
)

// imageCacheControl lets browsers and CDNs keep proxied images for 7 days.
const imageCacheControl = "public, max-age=604800, immutable"

// ImageProxy streams an allow-listed image back to the caller.
func (h *Handler) ImageProxy(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		failImage(c, errors.Validation(msgImageURLRequired))
		return
	}

	u, err := h.guard.Check(rawURL)
	if err != nil {
		if errors.IsForbidden(err) {
			h.logger.Warn("Blocked attempt to proxy unauthorized domain", "url", formatter.Truncate(rawURL, 80))
		}
		failImage(c, err)
		return
	}

	img, err := h.instagram.FetchImage(c.Request.Context(), rawURL)
	if err != nil {
		h.logger.Error("Error proxying Instagram image", "host", u.Hostname(), "error", err)
		failImage(c, err)
		return
	}

	c.Header("Cache-Control", imageCacheControl)
	c.Data(http.StatusOK, img.ContentType, img.Data)
}
