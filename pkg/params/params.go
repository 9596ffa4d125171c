package params

import (
	"net/url"
	"strings"

	"github.com/mehmetsinc/timer-takimca/pkg/background"
	"github.com/mehmetsinc/timer-takimca/pkg/timer"
)

// Query parameter names.
const (
	KeyTimer = "timer"
	KeyWall  = "wall"
	KeyMsg   = "msg"
)

// DefaultMessage is shown when no message is given.
const DefaultMessage = "Timer"

// Params holds the raw query parameters of the timer page.
type Params struct {
	Timer string `json:"timer" yaml:"timer"`
	Wall  string `json:"wall" yaml:"wall"`
	Msg   string `json:"msg" yaml:"msg"`
}

// Defaults returns the parameters of a page opened without a query.
func Defaults() Params {
	return Params{
		Timer: timer.DefaultSpec,
		Wall:  background.DefaultSpec,
		Msg:   DefaultMessage,
	}
}

// Parse reads the parameters from a query. Missing and empty values take
// their defaults.
func Parse(q url.Values) Params {
	p := Defaults()
	if v := q.Get(KeyTimer); v != "" {
		p.Timer = v
	}
	if v := q.Get(KeyWall); v != "" {
		p.Wall = v
	}
	if v := q.Get(KeyMsg); v != "" {
		p.Msg = v
	}
	return p
}

// ParseURL reads the parameters from a full page URL.
func ParseURL(raw string) (Params, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Params{}, err
	}
	return Parse(u.Query()), nil
}

// Message returns the message ready for display. The query value is
// percent-decoded once more so that doubly encoded links still read
// correctly; a value that does not decode is shown as is.
func (p Params) Message() string {
	m, err := url.PathUnescape(p.Msg)
	if err != nil {
		return p.Msg
	}
	return m
}

// Query encodes p as a query string without the leading '?'.
func (p Params) Query() string {
	var b strings.Builder
	b.WriteString(KeyTimer + "=" + EscapeComponent(p.Timer))
	b.WriteString("&" + KeyWall + "=" + EscapeComponent(p.Wall))
	b.WriteString("&" + KeyMsg + "=" + EscapeComponent(p.Msg))
	return b.String()
}

// BuildURL returns base with p appended as its query. Any query or fragment
// already on base is dropped.
func BuildURL(base string, p Params) string {
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	return base + "?" + p.Query()
}

// componentUnescapes restores the characters QueryEscape encodes but a URI
// component keeps literal.
var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EscapeComponent percent-encodes s as a URI component: everything except
// letters, digits and -_.!~*'() is escaped, and spaces become %20.
func EscapeComponent(s string) string {
	return componentUnescapes.Replace(url.QueryEscape(s))
}
