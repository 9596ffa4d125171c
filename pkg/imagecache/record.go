package imagecache

import "time"

// Record is one cached image.
type Record struct {
	// ID identifies the record. Backgrounds reference it as "img_<ID>".
	ID string `json:"id" cbor:"id"`

	// Data is the image as a data URL.
	Data string `json:"data" cbor:"data"`

	// URL is the address the image was fetched from, if any.
	URL string `json:"url,omitempty" cbor:"url,omitempty"`

	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp" cbor:"timestamp"`
}

// CreatedAt returns the creation time.
func (r Record) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Recent returns the n most recently inserted records, oldest first.
func Recent(records []Record, n int) []Record {
	if n < 0 {
		n = 0
	}
	if len(records) > n {
		records = records[len(records)-n:]
	}
	return append([]Record{}, records...)
}

// Image is raw image content with its media type.
type Image struct {
	ContentType string
	Bytes       []byte
}
