package domain

import "encoding/json"

const DefaultMediaType = "image"

type PostRecord struct {
	ID      string `json:"id"`
	Caption string `json:"caption"`
	// Timestamp is passed through untouched (epoch number or string); null when absent.
	Timestamp    json.RawMessage `json:"timestamp"`
	MediaType    string          `json:"media_type"`
	MediaURL     string          `json:"media_url"`
	LikeCount    int64           `json:"like_count"`
	CommentCount int64           `json:"comment_count"`
	RawData      json.RawMessage `json:"raw_data"`
}
