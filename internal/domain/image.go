package domain

const DefaultImageContentType = "image/jpeg"

// Image is a proxied media payload.
type Image struct {
	Data        []byte
	ContentType string
}
