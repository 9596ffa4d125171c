package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/mehmetsinc/timer-takimca/pkg/background"
	"github.com/mehmetsinc/timer-takimca/pkg/fetch"
	"github.com/mehmetsinc/timer-takimca/pkg/imagecache"
)

// ImageSummary describes a cached image without its payload.
type ImageSummary struct {
	ID          string `json:"id"`
	Wall        string `json:"wall"`
	URL         string `json:"url,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
}

func summarize(rec imagecache.Record) ImageSummary {
	sum := ImageSummary{
		ID:        rec.ID,
		Wall:      background.ImagePrefix + rec.ID,
		URL:       rec.URL,
		Timestamp: rec.Timestamp,
		Size:      len(rec.Data),
	}
	if img, err := imagecache.DecodeDataURL(rec.Data); err == nil {
		sum.ContentType = img.ContentType
		sum.Size = len(img.Bytes)
	}
	return sum
}

// handleImages handles GET and POST /api/v1/images.
func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListImages(w, r)
	case http.MethodPost:
		s.limiter.Wrap(s.handleUploadImage)(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListImages lists cached images, oldest first.
func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	records := s.cache.GetAll()
	out := make([]ImageSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, summarize(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUploadImage stores an uploaded image. The image is either the raw
// request body or the "file" field of a multipart form.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload())

	img, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.cache.AddImage(img)
	if err != nil {
		if errors.Is(err, imagecache.ErrNotImage) {
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   id,
		"wall": background.ImagePrefix + id,
	})
}

func (s *Server) maxUpload() int64 {
	if s.config.Fetch.MaxBytes > 0 {
		return s.config.Fetch.MaxBytes
	}
	return fetch.DefaultMaxBytes
}

func readUpload(r *http.Request) (imagecache.Image, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return imagecache.Image{}, err
		}
		if len(data) == 0 {
			return imagecache.Image{}, errors.New("empty body")
		}
		return imagecache.Image{ContentType: r.Header.Get("Content-Type"), Bytes: data}, nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return imagecache.Image{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return imagecache.Image{}, err
	}
	return imagecache.Image{ContentType: header.Header.Get("Content-Type"), Bytes: data}, nil
}

// handleImageFromURL handles POST /api/v1/images/from-url.
func (s *Server) handleImageFromURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if !background.IsRemote(req.URL) {
		writeError(w, http.StatusBadRequest, "url must start with http:// or https://")
		return
	}

	id, err := s.cache.SaveFromURL(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":   id,
		"wall": background.ImagePrefix + id,
	})
}

// handleImageByID handles GET and DELETE /api/v1/images/{id}.
func (s *Server) handleImageByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleGetImage(w, r, id)
	case http.MethodDelete:
		s.limiter.Wrap(func(w http.ResponseWriter, r *http.Request) {
			s.cache.Remove(id)
			w.WriteHeader(http.StatusNoContent)
		})(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetImage serves the decoded image with a content-hash ETag.
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request, id string) {
	rec, ok := s.cache.Find(id)
	if !ok {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	img, err := imagecache.DecodeDataURL(rec.Data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	etag := imageETag(img.Bytes)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=0, must-revalidate")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Bytes)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(img.Bytes)
	}
}

// imageETag returns a strong ETag derived from the image bytes.
func imageETag(b []byte) string {
	sum := blake2b.Sum256(b)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
