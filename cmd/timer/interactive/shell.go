// Package interactive provides the settings shell of the timer command.
package interactive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/mehmetsinc/timer-takimca/pkg/background"
	"github.com/mehmetsinc/timer-takimca/pkg/discovery"
	"github.com/mehmetsinc/timer-takimca/pkg/imagecache"
	"github.com/mehmetsinc/timer-takimca/pkg/params"
)

// BrowseFunc finds timer servers on the network.
type BrowseFunc func(ctx context.Context) ([]*discovery.Server, error)

// Shell edits timer settings and manages the local image cache.
type Shell struct {
	settings params.Settings
	base     string
	cache    *imagecache.Cache
	browse   BrowseFunc
	out      io.Writer
	rl       *readline.Instance

	// servers holds the result of the last discover.
	servers []*discovery.Server
}

// Config configures a Shell.
type Config struct {
	// Params are the initial settings.
	Params params.Params

	// Base is the page URL share links point at.
	Base string

	Cache  *imagecache.Cache
	Browse BrowseFunc

	// Out receives command output. Default: the readline stdout.
	Out io.Writer
}

// New creates a shell. The readline instance is created by Run.
func New(cfg Config) *Shell {
	return &Shell{
		settings: params.FromParams(cfg.Params),
		base:     cfg.Base,
		cache:    cfg.Cache,
		browse:   cfg.Browse,
		out:      cfg.Out,
	}
}

// Settings returns the current settings.
func (s *Shell) Settings() params.Settings {
	return s.settings
}

// URL returns the share URL for the current settings.
func (s *Shell) URL() string {
	return s.settings.ShareURL(s.base)
}

// Run starts the interactive command loop. It returns when the user quits
// or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "timer> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.rl = rl
	if s.out == nil {
		s.out = rl.Stdout()
	}

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}

		if !s.Execute(ctx, line) {
			return nil
		}
	}
}

// Execute runs one command line. It returns false when the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "show", "s":
		s.cmdShow()

	case "minutes", "m":
		s.cmdMinutes(args)

	case "end", "e":
		s.cmdEnd(args)

	case "wall", "w":
		s.cmdWall(args)

	case "msg":
		s.cmdMsg(input[len(parts[0]):])

	case "images", "ls":
		s.cmdImages()

	case "upload":
		s.cmdUpload(args)

	case "save-url":
		s.cmdSaveURL(ctx, args)

	case "rm":
		s.cmdRemove(args)

	case "discover", "d":
		s.cmdDiscover(ctx)

	case "base":
		s.cmdBase(args)

	case "url", "u":
		fmt.Fprintln(s.out, s.URL())

	case "quit", "exit", "q":
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `Commands:
  show                   Show current settings
  minutes <n>            Count down n minutes
  end <HH:MM>            Count down to a clock time
  wall dots|boxes        Use a built-in pattern
  wall url <url|path>    Use an image URL or path
  wall img <id>          Use a cached image
  msg <text>             Set the message
  images                 List cached images
  upload <file>          Add an image file to the cache
  save-url <url>         Fetch and cache an image URL
  rm <id>                Remove a cached image
  discover               Find timer servers on the network
  base <url|n>           Set the page URL, or pick discovered server n
  url                    Print the share URL
  quit                   Exit`)
}

func (s *Shell) cmdShow() {
	st := s.settings
	fmt.Fprintf(s.out, "Timer:      %s\n", describeTimer(st))
	fmt.Fprintf(s.out, "Background: %s\n", describeBackground(st))
	fmt.Fprintf(s.out, "Message:    %s\n", st.Message)
	fmt.Fprintf(s.out, "URL:        %s\n", s.URL())
}

func describeTimer(st params.Settings) string {
	if st.TimerMode == params.ModeEndTime {
		return "until " + st.EndTime
	}
	return st.Minutes + " minutes"
}

func describeBackground(st params.Settings) string {
	switch st.Background {
	case params.ChoiceURL:
		return "url " + st.URL
	case params.ChoiceUploaded:
		if st.ImageID == "" {
			return "cached image (none selected)"
		}
		return "cached image " + st.ImageID
	default:
		return string(st.Background)
	}
}

func (s *Shell) cmdMinutes(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: minutes <n>")
		return
	}
	s.settings.TimerMode = params.ModeMinutes
	s.settings.Minutes = args[0]
	fmt.Fprintln(s.out, s.URL())
}

func (s *Shell) cmdEnd(args []string) {
	if len(args) != 1 || !strings.Contains(args[0], ":") {
		fmt.Fprintln(s.out, "Usage: end <HH:MM>")
		return
	}
	// Normalize like loading it from a URL would.
	loaded := params.FromParams(params.Params{Timer: args[0]})
	s.settings.TimerMode = params.ModeEndTime
	s.settings.EndTime = loaded.EndTime
	fmt.Fprintln(s.out, s.URL())
}

func (s *Shell) cmdWall(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: wall dots|boxes|url <url>|img <id>")
		return
	}

	switch strings.ToLower(args[0]) {
	case background.Dots:
		s.settings.Background = params.ChoiceDots
	case background.Boxes:
		s.settings.Background = params.ChoiceBoxes
	case "url":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "Usage: wall url <url|path>")
			return
		}
		s.settings.Background = params.ChoiceURL
		s.settings.URL = args[1]
	case "img":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "Usage: wall img <id>")
			return
		}
		if s.cache != nil {
			if _, ok := s.cache.Find(args[1]); !ok {
				fmt.Fprintf(s.out, "Warning: image %s is not in the local cache\n", args[1])
			}
		}
		s.settings.Background = params.ChoiceUploaded
		s.settings.ImageID = args[1]
	default:
		fmt.Fprintf(s.out, "Unknown background: %s\n", args[0])
		return
	}
	fmt.Fprintln(s.out, s.URL())
}

func (s *Shell) cmdMsg(text string) {
	s.settings.Message = strings.TrimSpace(text)
	fmt.Fprintln(s.out, s.URL())
}

func (s *Shell) cmdImages() {
	if s.cache == nil {
		fmt.Fprintln(s.out, "No image cache configured")
		return
	}

	records := s.cache.GetAll()
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No cached images")
		return
	}

	for _, rec := range records {
		source := rec.URL
		if source == "" {
			source = "(uploaded)"
		}
		fmt.Fprintf(s.out, "  %s  %s  %s  %s\n",
			background.ImagePrefix+rec.ID,
			rec.CreatedAt().Format(time.DateTime),
			formatSize(len(rec.Data)),
			source,
		)
	}
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func (s *Shell) cmdUpload(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: upload <file>")
		return
	}
	if s.cache == nil {
		fmt.Fprintln(s.out, "No image cache configured")
		return
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	id, err := s.cache.AddImage(imagecache.Image{ContentType: http.DetectContentType(data), Bytes: data})
	if err != nil {
		fmt.Fprintf(s.out, "Error: %s: %v\n", args[0], err)
		return
	}
	s.selectImage(id)
}

func (s *Shell) cmdSaveURL(ctx context.Context, args []string) {
	if len(args) != 1 || !background.IsRemote(args[0]) {
		fmt.Fprintln(s.out, "Usage: save-url <http(s)://...>")
		return
	}
	if s.cache == nil {
		fmt.Fprintln(s.out, "No image cache configured")
		return
	}

	fmt.Fprintln(s.out, "Fetching...")
	id, err := s.cache.SaveFromURL(ctx, args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error saving image: %v\n", err)
		return
	}
	s.selectImage(id)
}

func (s *Shell) selectImage(id string) {
	s.settings.Background = params.ChoiceUploaded
	s.settings.ImageID = id
	fmt.Fprintf(s.out, "Saved as %s%s\n", background.ImagePrefix, id)
	fmt.Fprintln(s.out, s.URL())
}

func (s *Shell) cmdRemove(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: rm <id>")
		return
	}
	if s.cache == nil {
		fmt.Fprintln(s.out, "No image cache configured")
		return
	}

	id, _ := strings.CutPrefix(args[0], background.ImagePrefix)
	s.cache.Remove(id)

	// A removed selection keeps the "uploaded" choice with nothing selected.
	if s.settings.Background == params.ChoiceUploaded && s.settings.ImageID == id {
		s.settings.ImageID = ""
	}
	fmt.Fprintf(s.out, "Removed %s\n", id)
}

func (s *Shell) cmdDiscover(ctx context.Context) {
	if s.browse == nil {
		fmt.Fprintln(s.out, "Discovery is not available")
		return
	}

	fmt.Fprintln(s.out, "Searching...")
	servers, err := s.browse(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	s.servers = servers
	if len(servers) == 0 {
		fmt.Fprintln(s.out, "No timer servers found")
		return
	}
	for i, srv := range servers {
		images := ""
		if srv.Images >= 0 {
			images = fmt.Sprintf(" (%d images)", srv.Images)
		}
		fmt.Fprintf(s.out, "  [%d] %s  %s  v%s%s\n", i+1, srv.Name, srv.BaseURL(), srv.Version, images)
	}
}

func (s *Shell) cmdBase(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(s.out, "Base: %s\n", s.base)
		return
	}

	if n, err := strconv.Atoi(args[0]); err == nil {
		if n < 1 || n > len(s.servers) {
			fmt.Fprintf(s.out, "No discovered server %d\n", n)
			return
		}
		s.base = s.servers[n-1].BaseURL()
	} else {
		s.base = args[0]
	}
	fmt.Fprintln(s.out, s.URL())
}
