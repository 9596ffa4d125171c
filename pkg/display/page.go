// Package display builds the state of one timer page from its query
// parameters: the message, the resolved background and a running countdown.
package display

import (
	"time"

	"github.com/mehmetsinc/timer-takimca/pkg/background"
	"github.com/mehmetsinc/timer-takimca/pkg/params"
	"github.com/mehmetsinc/timer-takimca/pkg/timer"
)

// Page is a loaded timer page.
type Page struct {
	Params     params.Params
	Message    string
	Background background.DisplayRef
	Countdown  *timer.Countdown

	// Notes lists the inputs that fell back to a default while loading.
	Notes []string
}

// Load resolves p against now and the image source. It never fails:
// malformed input falls back to defaults and is listed in Notes.
func Load(p params.Params, now time.Time, src background.Source) *Page {
	page := &Page{
		Params:  p,
		Message: p.Message(),
	}

	tr := timer.ResolveDetailed(p.Timer, now)
	if tr.Degraded {
		page.Notes = append(page.Notes, note(params.KeyTimer, tr.Cause))
	}
	page.Countdown = timer.NewCountdown(tr.Value)

	br := background.ResolveDetailed(p.Wall, src)
	if br.Degraded {
		page.Notes = append(page.Notes, note(params.KeyWall, br.Cause))
	}
	page.Background = br.Value

	return page
}

func note(key string, cause error) string {
	if cause == nil {
		return key + ": default used"
	}
	return key + ": " + cause.Error()
}

// Snapshot is the render-ready view of a page at one instant.
type Snapshot struct {
	Message    string         `json:"message"`
	Background BackgroundView `json:"background"`
	Timer      TimerView      `json:"timer"`
	Display    timer.Display  `json:"display"`
	Params     params.Params  `json:"params"`
	Notes      []string       `json:"notes,omitempty"`

	// Now is the snapshot instant in Unix milliseconds.
	Now int64 `json:"now"`
}

// BackgroundView describes the background for a renderer.
type BackgroundView struct {
	Kind    background.Kind `json:"kind"`
	Pattern string          `json:"pattern,omitempty"`
	Image   string          `json:"image,omitempty"`
	CSS     string          `json:"css"`
}

// TimerView describes the resolved timer for a renderer.
type TimerView struct {
	Kind timer.Kind `json:"kind"`

	// Target is the end instant in Unix milliseconds.
	Target int64 `json:"target"`
}

// Snapshot ticks the countdown at now and returns the page view.
func (p *Page) Snapshot(now time.Time) Snapshot {
	r := p.Countdown.Resolved()
	return Snapshot{
		Message: p.Message,
		Background: BackgroundView{
			Kind:    p.Background.Kind,
			Pattern: p.Background.Pattern,
			Image:   p.Background.Image,
			CSS:     p.Background.CSS(),
		},
		Timer: TimerView{
			Kind:   r.Kind,
			Target: r.Target.UnixMilli(),
		},
		Display: p.Countdown.Tick(now),
		Params:  p.Params,
		Notes:   p.Notes,
		Now:     now.UnixMilli(),
	}
}
