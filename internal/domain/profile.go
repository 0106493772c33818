package domain

import "encoding/json"

// ProfileRecord is the normalized profile shape served to the frontend.
// Field order and JSON names are part of the public contract.
type ProfileRecord struct {
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Biography      string `json:"biography"`
	ProfilePicURL  string `json:"profile_pic_url"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	PostsCount     int64  `json:"posts_count"`
	MediaCount     int64  `json:"media_count"` // alias of PostsCount
	IsVerified     bool   `json:"is_verified"`
	IsPrivate      bool   `json:"is_private"`
	Website        string `json:"website"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	FollowerCount  int64  `json:"follower_count"` // alias of FollowersCount

	// RawData is the upstream object exactly as received.
	RawData json.RawMessage `json:"raw_data"`
}
