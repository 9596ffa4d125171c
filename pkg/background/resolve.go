package background

import (
	"errors"
	"strings"

	"github.com/mehmetsinc/timer-takimca/pkg/degrade"
	"github.com/mehmetsinc/timer-takimca/pkg/imagecache"
)

// Built-in patterns.
const (
	Dots  = "dots"
	Boxes = "boxes"
)

// DefaultSpec is the background used when none is given.
const DefaultSpec = Dots

// ImagePrefix marks a reference to a cached image.
const ImagePrefix = "img_"

// ErrImageNotFound is the cause of a degraded result for an unknown img_ id.
var ErrImageNotFound = errors.New("cached image not found")

// Kind is what a DisplayRef renders.
type Kind uint8

const (
	// KindNone renders no background image.
	KindNone Kind = iota

	// KindPattern renders a built-in pattern.
	KindPattern

	// KindImage renders an image source.
	KindImage
)

// String returns the kind name used in API responses.
func (k Kind) String() string {
	switch k {
	case KindPattern:
		return "pattern"
	case KindImage:
		return "image"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DisplayRef is a render-ready background.
type DisplayRef struct {
	Kind Kind

	// Pattern is Dots or Boxes when Kind is KindPattern.
	Pattern string

	// Image is a data URL, absolute URL or path when Kind is KindImage.
	Image string
}

// CSS returns the background-image value for the ref.
func (d DisplayRef) CSS() string {
	if d.Kind != KindImage {
		return "none"
	}
	return "url('" + escapeCSSString(d.Image) + "')"
}

// escapeCSSString makes s safe inside a single-quoted CSS url().
func escapeCSSString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\a `, "\r", `\d `)
	return r.Replace(s)
}

// Source is the image cache as seen by the resolver.
type Source interface {
	Find(id string) (imagecache.Record, bool)
	FindByURL(url string) (imagecache.Record, bool)
	Prefetch(url string)
}

// Resolve turns a background specification into a DisplayRef.
func Resolve(spec string, src Source) DisplayRef {
	return ResolveDetailed(spec, src).Value
}

// ResolveDetailed is Resolve with the degrade information kept.
func ResolveDetailed(spec string, src Source) degrade.Result[DisplayRef] {
	switch {
	case spec == Dots:
		return degrade.OK(DisplayRef{Kind: KindPattern, Pattern: Dots})

	case spec == Boxes:
		return degrade.OK(DisplayRef{Kind: KindPattern, Pattern: Boxes})

	case strings.HasPrefix(spec, ImagePrefix):
		id := strings.TrimPrefix(spec, ImagePrefix)
		if src != nil {
			if rec, ok := src.Find(id); ok {
				return degrade.OK(DisplayRef{Kind: KindImage, Image: rec.Data})
			}
		}
		return degrade.Fallback(DisplayRef{Kind: KindNone}, ErrImageNotFound)

	case IsRemote(spec):
		if src == nil {
			return degrade.OK(DisplayRef{Kind: KindImage, Image: spec})
		}
		if rec, ok := src.FindByURL(spec); ok {
			return degrade.OK(DisplayRef{Kind: KindImage, Image: rec.Data})
		}
		src.Prefetch(spec)
		return degrade.OK(DisplayRef{Kind: KindImage, Image: spec})

	default:
		return degrade.OK(DisplayRef{Kind: KindImage, Image: spec})
	}
}

// IsRemote reports whether spec is an http or https URL.
func IsRemote(spec string) bool {
	return strings.HasPrefix(spec, "http://") || strings.HasPrefix(spec, "https://")
}

// ImageID returns the cached image id referenced by spec, if any.
func ImageID(spec string) (string, bool) {
	return strings.CutPrefix(spec, ImagePrefix)
}
