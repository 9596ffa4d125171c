// Package imagecache keeps uploaded and fetched background images.
//
// The whole collection is stored as one serialized blob under a single key
// of a kvstore.Store. Every lookup reads the blob, every mutation rewrites it.
// Insertion order is recency order; there is no per-record expiry.
//
// # Failure Policy
//
// Reads never fail: a missing, unreadable or corrupt blob is an empty
// collection. Writes never fail either: when a write is rejected (typically
// because the storage quota is exceeded) the collection is cut down to the
// MaxRetained most recent records and written once more.
//
// SaveFromURL is the exception. It is driven by an explicit user action, so
// fetch and encoding failures are returned to the caller.
//
// # Record Format
//
// Records serialize as {"id","data","url","timestamp"} with the image held as
// a base64 data URL and the timestamp in Unix milliseconds.
package imagecache
