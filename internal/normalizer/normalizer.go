// Package normalizer maps arbitrarily shaped upstream JSON onto the fixed
// ProfileRecord and PostRecord contracts.
//
// Every accessor is total: missing keys, nulls and type mismatches fall back to
// the field default instead of failing the whole record.
package normalizer

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/orgball2608/insta-profile-proxy/internal/domain"
	"github.com/tidwall/gjson"
)

// NormalizeProfile normalizes one upstream profile object. requested is used when the
// payload carries no username of its own.
func (s Schema) NormalizeProfile(raw []byte, requested string) domain.ProfileRecord {
	doc := gjson.ParseBytes(raw)
	c := s.Profile

	username := str(doc, c.Username)
	if username == "" {
		username = requested
	}

	followers := count(doc, c.FollowersCount)
	posts := count(doc, c.PostsCount)

	return domain.ProfileRecord{
		Username:       username,
		FullName:       str(doc, c.FullName),
		Biography:      str(doc, c.Biography),
		ProfilePicURL:  str(doc, c.ProfilePicURL),
		FollowersCount: followers,
		FollowingCount: count(doc, c.FollowingCount),
		PostsCount:     posts,
		MediaCount:     posts,
		IsVerified:     boolean(doc, c.IsVerified),
		IsPrivate:      boolean(doc, c.IsPrivate),
		Website:        str(doc, c.Website),
		Email:          str(doc, c.Email),
		PhoneNumber:    str(doc, c.PhoneNumber),
		FollowerCount:  followers,
		RawData:        rawCopy(raw),
	}
}

// NormalizePost normalizes one upstream post object.
func (s Schema) NormalizePost(raw []byte) domain.PostRecord {
	doc := gjson.ParseBytes(raw)
	c := s.Post

	mediaType := str(doc, c.MediaType)
	if mediaType == "" {
		mediaType = domain.DefaultMediaType
	}

	return domain.PostRecord{
		ID:           str(doc, c.ID),
		Caption:      str(doc, c.Caption),
		Timestamp:    passthrough(doc, c.Timestamp),
		MediaType:    mediaType,
		MediaURL:     str(doc, c.MediaURL),
		LikeCount:    count(doc, c.LikeCount),
		CommentCount: count(doc, c.CommentCount),
		RawData:      rawCopy(raw),
	}
}

// NormalizePosts extracts the post list from a response body that is either a bare
// array or an object holding the array under one of PostLists. Anything else
// is an empty list.
func (s Schema) NormalizePosts(body []byte) []domain.PostRecord {
	items := s.postItems(gjson.ParseBytes(body))

	posts := make([]domain.PostRecord, 0, len(items))
	for _, item := range items {
		posts = append(posts, s.NormalizePost([]byte(item.Raw)))
	}
	return posts
}

func (s Schema) postItems(doc gjson.Result) []gjson.Result {
	if doc.IsArray() {
		return doc.Array()
	}
	if !doc.IsObject() {
		return nil
	}
	for _, path := range s.PostLists {
		if r := doc.Get(path); r.IsArray() {
			return r.Array()
		}
	}
	return nil
}

// IsEmpty reports whether body carries no usable data: nothing at all, a
// scalar other than a non-empty string, or an object or array without
// entries.
func IsEmpty(body []byte) bool {
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	doc := gjson.ParseBytes(body)
	switch doc.Type {
	case gjson.String:
		return doc.Str == ""
	case gjson.JSON:
		empty := true
		doc.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return empty
	}
	return true
}

// resolve returns the first candidate that is present and not null.
func resolve(doc gjson.Result, chain Chain) (gjson.Result, bool) {
	for _, path := range chain {
		r := doc.Get(path)
		if r.Exists() && r.Type != gjson.Null {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// str resolves a textual field. Objects and arrays are not text, so they are
// skipped in favor of later candidates.
func str(doc gjson.Result, chain Chain) string {
	for _, path := range chain {
		r := doc.Get(path)
		switch r.Type {
		case gjson.String:
			return r.Str
		case gjson.Number, gjson.True, gjson.False:
			return r.String()
		}
	}
	return ""
}

// count resolves a counter, coercing with parseInt rules and flooring at zero.
func count(doc gjson.Result, chain Chain) int64 {
	r, ok := resolve(doc, chain)
	if !ok {
		return 0
	}
	return max(0, toInt(r))
}

func toInt(r gjson.Result) int64 {
	switch r.Type {
	case gjson.Number:
		n := r.Num
		switch {
		case math.IsNaN(n) || math.IsInf(n, 0):
			return 0
		case n >= math.MaxInt64:
			return math.MaxInt64
		case n <= math.MinInt64:
			return math.MinInt64
		}
		return int64(n)
	case gjson.String:
		return parseLeadingInt(r.Str)
	}
	return 0
}

// parseLeadingInt reads an optional sign and the leading run of decimal
// digits, ignoring whatever follows ("12abc" is 12, "abc" is 0).
func parseLeadingInt(s string) int64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// only overflow is possible here
		n = math.MaxInt64
	}
	if neg {
		return -n
	}
	return n
}

func boolean(doc gjson.Result, chain Chain) bool {
	r, ok := resolve(doc, chain)
	if !ok {
		return false
	}
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		b, err := strconv.ParseBool(strings.TrimSpace(r.Str))
		return err == nil && b
	}
	return false
}

// passthrough returns the resolved value's raw JSON, or nil (rendered as null).
func passthrough(doc gjson.Result, chain Chain) json.RawMessage {
	r, ok := resolve(doc, chain)
	if !ok {
		return nil
	}
	return json.RawMessage(r.Raw)
}

func rawCopy(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	return append(json.RawMessage(nil), trimmed...)
}
