package imagecache

import (
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"strings"
)

// Encoding errors.
var (
	ErrNotImage   = errors.New("content is not an image")
	ErrNotDataURL = errors.New("not a base64 data URL")
)

// IsImage reports whether contentType is an image media type.
func IsImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// ContentType returns the media type of img, sniffing the bytes when the
// declared type is empty or generic.
func ContentType(img Image) string {
	ct := strings.TrimSpace(img.ContentType)
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		return http.DetectContentType(img.Bytes)
	}
	return ct
}

// EncodeDataURL encodes img as "data:<type>;base64,<payload>".
func EncodeDataURL(img Image) (string, error) {
	ct := ContentType(img)
	if !IsImage(ct) {
		return "", ErrNotImage
	}
	mediaType, _, _ := mime.ParseMediaType(ct)
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(img.Bytes), nil
}

// DecodeDataURL reverses EncodeDataURL.
func DecodeDataURL(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrNotDataURL
	}
	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, ErrNotDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, errors.Join(ErrNotDataURL, err)
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}
	return Image{ContentType: mediaType, Bytes: data}, nil
}
