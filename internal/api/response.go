package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/insta-profile-proxy/internal/domain"
	apperrors "github.com/orgball2608/insta-profile-proxy/pkg/errors"
)

const (
	msgUsernameRequired = "Username is required"
	msgInvalidBody      = "Invalid request body"
	msgNoProfile        = "No profile data found"

	msgImageURLRequired = "Image URL is required"
	msgInvalidURL       = "Invalid URL format"
	msgForbiddenDomain  = "Forbidden: Domain not allowed"
	msgImageUpstream    = "Failed to fetch image from source"
	msgTimeout          = "Request timeout"
	msgInternal         = "Internal server error"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type profileResponse struct {
	Success bool                 `json:"success"`
	Profile domain.ProfileRecord `json:"profile"`
}

type postsResponse struct {
	Success     bool                `json:"success"`
	Posts       []domain.PostRecord `json:"posts"`
	RawResponse json.RawMessage     `json:"raw_response"`
}

// imageErrorResponse has no success flag; the image route only speaks JSON on failure.
type imageErrorResponse struct {
	Error string `json:"error"`
}

type usernameRequest struct {
	Username string `json:"username"`
}

func bindUsername(c *gin.Context) (string, error) {
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", apperrors.Validation(msgUsernameRequired)
		}
		return "", apperrors.Validation(msgInvalidBody)
	}
	if req.Username == "" {
		return "", apperrors.Validation(msgUsernameRequired)
	}
	return req.Username, nil
}

// fail writes the {success:false} body for data routes.
func fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	message := apperrors.GetMessage(err)
	if apperrors.IsTimeout(err) {
		message = msgTimeout
	}
	if message == "" {
		message = msgInternal
	}
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: message})
}

// failImage writes the image route's error body. Messages are fixed per class
// so nothing about the fetch leaks to the caller.
func failImage(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	var message string
	switch {
	case apperrors.IsInvalidURL(err):
		message = msgInvalidURL
	case apperrors.IsForbidden(err):
		message = msgForbiddenDomain
	case apperrors.IsTimeout(err):
		message = msgTimeout
	case apperrors.IsUpstream(err):
		message = msgImageUpstream
	case apperrors.IsBadRequest(err):
		message = apperrors.GetMessage(err)
	default:
		status = http.StatusInternalServerError
		message = msgInternal
	}
	c.AbortWithStatusJSON(status, imageErrorResponse{Error: message})
}
