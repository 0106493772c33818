package normalizer

import (
	"sort"
)

// Chain is an ordered list of gjson paths tried in turn to fill one output field.
type Chain []string

type ProfileChains struct {
	Username       Chain
	FullName       Chain
	Biography      Chain
	ProfilePicURL  Chain
	FollowersCount Chain
	FollowingCount Chain
	PostsCount     Chain
	IsVerified     Chain
	IsPrivate      Chain
	Website        Chain
	Email          Chain
	PhoneNumber    Chain
}

type PostChains struct {
	ID           Chain
	Caption      Chain
	Timestamp    Chain
	MediaType    Chain
	MediaURL     Chain
	LikeCount    Chain
	CommentCount Chain
}

// Schema describes how one upstream provider lays out its payloads.
// Supporting another provider means adding a Schema, not code.
type Schema struct {
	Name    string
	Profile ProfileChains
	Post    PostChains
	// PostLists locates the posts array when the body is not a bare array.
	PostLists Chain
}

// Instagram120 matches the RapidAPI instagram120 provider. Trailing user.*
// candidates cover responses that wrap the profile one level down.
var Instagram120 = Schema{
	Name: "instagram120",
	Profile: ProfileChains{
		Username:       Chain{"username", "user.username"},
		FullName:       Chain{"full_name", "name", "user.full_name", "user.name"},
		Biography:      Chain{"biography", "bio", "user.biography", "user.bio"},
		ProfilePicURL:  Chain{"profile_pic_url", "profile_picture", "user.profile_pic_url", "user.profile_picture"},
		FollowersCount: Chain{"followers_count", "followers", "user.followers_count", "user.followers"},
		FollowingCount: Chain{"following_count", "following", "user.following_count", "user.following"},
		PostsCount:     Chain{"posts_count", "media_count", "user.posts_count", "user.media_count"},
		IsVerified:     Chain{"is_verified", "verified", "user.is_verified", "user.verified"},
		IsPrivate:      Chain{"is_private", "private", "user.is_private", "user.private"},
		Website:        Chain{"website", "user.website"},
		Email:          Chain{"email", "user.email"},
		PhoneNumber:    Chain{"phone_number", "user.phone_number"},
	},
	Post: PostChains{
		ID:           Chain{"id", "pk"},
		Caption:      Chain{"caption", "text", "caption.text"},
		Timestamp:    Chain{"timestamp", "taken_at"},
		MediaType:    Chain{"media_type", "type"},
		MediaURL:     Chain{"media_url", "image_url", "images.0", "images.0.url", "image_versions2.candidates.0.url"},
		LikeCount:    Chain{"like_count", "likes"},
		CommentCount: Chain{"comment_count", "comments"},
	},
	PostLists: Chain{"posts", "data"},
}

// WebProfile matches the web_profile_info / GraphQL shape where everything
// hangs off data.user and counters live in edge_* objects.
var WebProfile = Schema{
	Name: "webprofile",
	Profile: ProfileChains{
		Username:       Chain{"data.user.username", "user.username", "username"},
		FullName:       Chain{"data.user.full_name", "user.full_name", "full_name"},
		Biography:      Chain{"data.user.biography", "user.biography", "biography"},
		ProfilePicURL:  Chain{"data.user.profile_pic_url_hd", "data.user.profile_pic_url", "user.profile_pic_url_hd", "user.profile_pic_url"},
		FollowersCount: Chain{"data.user.edge_followed_by.count", "user.edge_followed_by.count", "edge_followed_by.count"},
		FollowingCount: Chain{"data.user.edge_follow.count", "user.edge_follow.count", "edge_follow.count"},
		PostsCount:     Chain{"data.user.edge_owner_to_timeline_media.count", "user.edge_owner_to_timeline_media.count", "edge_owner_to_timeline_media.count"},
		IsVerified:     Chain{"data.user.is_verified", "user.is_verified", "is_verified"},
		IsPrivate:      Chain{"data.user.is_private", "user.is_private", "is_private"},
		Website:        Chain{"data.user.external_url", "user.external_url", "external_url"},
		Email:          Chain{"data.user.business_email", "user.business_email", "business_email"},
		PhoneNumber:    Chain{"data.user.business_phone_number", "user.business_phone_number", "business_phone_number"},
	},
	Post: PostChains{
		ID:           Chain{"node.id", "id"},
		Caption:      Chain{"node.edge_media_to_caption.edges.0.node.text", "node.accessibility_caption"},
		Timestamp:    Chain{"node.taken_at_timestamp", "taken_at_timestamp"},
		MediaType:    Chain{"node.__typename", "__typename"},
		MediaURL:     Chain{"node.display_url", "display_url", "node.thumbnail_src"},
		LikeCount:    Chain{"node.edge_liked_by.count", "node.edge_media_preview_like.count"},
		CommentCount: Chain{"node.edge_media_to_comment.count"},
	},
	PostLists: Chain{"data.user.edge_owner_to_timeline_media.edges", "user.edge_owner_to_timeline_media.edges", "edges"},
}

var registry = map[string]Schema{
	Instagram120.Name: Instagram120,
	WebProfile.Name:   WebProfile,
}

// Lookup returns the schema registered under name.
func Lookup(name string) (Schema, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names lists registered schema names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
