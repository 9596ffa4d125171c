package params

import (
	"strings"

	"github.com/mehmetsinc/timer-takimca/pkg/background"
)

// TimerMode selects how the timer is specified.
type TimerMode string

const (
	ModeMinutes TimerMode = "minutes"
	ModeEndTime TimerMode = "endTime"
)

// BackgroundChoice selects the kind of background.
type BackgroundChoice string

const (
	ChoiceDots     BackgroundChoice = "dots"
	ChoiceBoxes    BackgroundChoice = "boxes"
	ChoiceURL      BackgroundChoice = "url"
	ChoiceUploaded BackgroundChoice = "uploaded"
)

// Settings is the editable form of a page configuration.
type Settings struct {
	TimerMode  TimerMode        `json:"timerMode" yaml:"timerMode"`
	Minutes    string           `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	EndTime    string           `json:"endTime,omitempty" yaml:"endTime,omitempty"`
	Background BackgroundChoice `json:"background" yaml:"background"`
	URL        string           `json:"url,omitempty" yaml:"url,omitempty"`
	ImageID    string           `json:"imageId,omitempty" yaml:"imageId,omitempty"`
	Message    string           `json:"message,omitempty" yaml:"message,omitempty"`
}

// DefaultEndTime is used when end-time mode has no time.
const DefaultEndTime = "00:00"

// Params converts the settings into query parameters.
func (s Settings) Params() Params {
	var p Params

	if s.TimerMode == ModeEndTime {
		if s.EndTime == "" {
			p.Timer = DefaultEndTime
		} else {
			h, m, _ := strings.Cut(s.EndTime, ":")
			m, _, _ = strings.Cut(m, ":")
			p.Timer = h + ":" + m
		}
	} else {
		p.Timer = s.Minutes
		if p.Timer == "" {
			p.Timer = "0"
		}
	}

	p.Wall = string(s.Background)
	switch s.Background {
	case ChoiceURL:
		p.Wall = s.URL
		if p.Wall == "" {
			p.Wall = background.Dots
		}
	case ChoiceUploaded:
		if s.ImageID != "" {
			p.Wall = background.ImagePrefix + s.ImageID
		}
	case "":
		p.Wall = background.Dots
	}

	p.Msg = s.Message
	if p.Msg == "" {
		p.Msg = DefaultMessage
	}
	return p
}

// ShareURL builds the share URL for the settings.
func (s Settings) ShareURL(base string) string {
	return BuildURL(base, s.Params())
}

// FromParams loads query parameters into editable settings.
func FromParams(p Params) Settings {
	var s Settings

	if strings.Contains(p.Timer, ":") {
		s.TimerMode = ModeEndTime
		h, m, _ := strings.Cut(p.Timer, ":")
		m, _, _ = strings.Cut(m, ":")
		s.EndTime = padTwo(h) + ":" + padTwo(m)
	} else {
		s.TimerMode = ModeMinutes
		s.Minutes = p.Timer
		if s.Minutes == "" {
			s.Minutes = "0"
		}
	}

	switch {
	case p.Wall == background.Dots || p.Wall == "":
		s.Background = ChoiceDots
	case p.Wall == background.Boxes:
		s.Background = ChoiceBoxes
	case strings.HasPrefix(p.Wall, background.ImagePrefix):
		s.Background = ChoiceUploaded
		s.ImageID, _ = background.ImageID(p.Wall)
	default:
		s.Background = ChoiceURL
		s.URL = p.Wall
	}

	s.Message = p.Message()
	return s
}

func padTwo(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}
