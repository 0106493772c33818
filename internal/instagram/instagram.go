package instagram

import (
	"context"

	"github.com/orgball2608/insta-profile-proxy/internal/domain"
)

// Client performs the single outbound call behind each inbound request.
// Profile and post calls return the provider's JSON body untouched; it is
// either empty or valid JSON.
//
//go:generate go run go.uber.org/mock/mockgen -source=instagram.go -destination=mocks/mock.go
type Client interface {
	FetchProfile(ctx context.Context, username string) ([]byte, error)
	FetchPosts(ctx context.Context, username string) ([]byte, error)
	// FetchImage downloads a media payload. The URL must already have passed
	// the allow-list guard.
	FetchImage(ctx context.Context, imageURL string) (*domain.Image, error)
}
