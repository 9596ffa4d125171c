// Command timer shows a countdown in the terminal and edits timer page
// settings.
//
// Usage:
//
//	timer [flags]
//
// Flags:
//
//	-timer string      Minutes ("05") or end time ("23:59") (default "00")
//	-wall string       Background: dots, boxes, img_<id>, URL or path (default "dots")
//	-msg string        Message (default "Timer")
//	-url string        Read timer, wall and msg from a timer page URL
//	-settings          Open the interactive settings shell
//	-base string       Page URL used for share links (default "http://localhost:8080/")
//	-store string      Image store: memory, file, sqlite (default "file")
//	-db string         Store path (default "~/.timer-takimca")
//	-codec string      Image collection encoding: json, cbor (default "json")
//	-log-level string  Log level: debug, info, warn, error (default "warn")
//
// Examples:
//
//	# Count down five minutes
//	timer -timer 05 -msg "Coffee break"
//
//	# Replay a shared link
//	timer -url "http://wall.local:8080/?timer=23:59&wall=boxes"
//
//	# Build a share link, picking a server found on the LAN
//	timer -settings
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mehmetsinc/timer-takimca/cmd/timer/interactive"
	"github.com/mehmetsinc/timer-takimca/pkg/background"
	"github.com/mehmetsinc/timer-takimca/pkg/discovery"
	"github.com/mehmetsinc/timer-takimca/pkg/display"
	"github.com/mehmetsinc/timer-takimca/pkg/fetch"
	"github.com/mehmetsinc/timer-takimca/pkg/imagecache"
	"github.com/mehmetsinc/timer-takimca/pkg/kvstore"
	"github.com/mehmetsinc/timer-takimca/pkg/params"
	"github.com/mehmetsinc/timer-takimca/pkg/timer"
)

// Version information - set at build time via ldflags
var Version = "0.1.0"

var (
	timerSpec   = flag.String("timer", timer.DefaultSpec, "Minutes (\"05\") or end time (\"23:59\")")
	wallSpec    = flag.String("wall", background.DefaultSpec, "Background: dots, boxes, img_<id>, URL or path")
	msg         = flag.String("msg", params.DefaultMessage, "Message")
	pageURL     = flag.String("url", "", "Read timer, wall and msg from a timer page URL")
	settings    = flag.Bool("settings", false, "Open the interactive settings shell")
	baseURL     = flag.String("base", "http://localhost:8080/", "Page URL used for share links")
	storeDriver = flag.String("store", kvstore.DriverFile, "Image store: memory, file, sqlite")
	dbPath      = flag.String("db", defaultStorePath(), "Store path")
	codecName   = flag.String("codec", "json", "Image collection encoding: json, cbor")
	logLevel    = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	showVersion = flag.Bool("version", false, "Show version information")
)

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".timer-takimca"
	}
	return filepath.Join(home, ".timer-takimca")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Printf("timer %s\n", Version)
		return 0
	}

	setupLogging(*logLevel)

	p, err := pageParams()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	cache, closeStore, err := openCache()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *settings {
		sh := interactive.New(interactive.Config{
			Params: p,
			Base:   *baseURL,
			Cache:  cache,
			Browse: func(ctx context.Context) ([]*discovery.Server, error) {
				return discovery.Browse(ctx, discovery.DefaultConfig())
			},
		})
		if err := sh.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(sh.URL())
		return 0
	}

	countdown(ctx, os.Stdout, display.Load(p, time.Now(), cache))
	return 0
}

// pageParams returns the page parameters from -url or the individual flags.
func pageParams() (params.Params, error) {
	if *pageURL != "" {
		p, err := params.ParseURL(*pageURL)
		if err != nil {
			return p, fmt.Errorf("invalid -url: %w", err)
		}
		return p, nil
	}
	return params.Parse(map[string][]string{
		params.KeyTimer: {*timerSpec},
		params.KeyWall:  {*wallSpec},
		params.KeyMsg:   {*msg},
	}), nil
}

// openCache opens the local image cache.
func openCache() (*imagecache.Cache, func(), error) {
	if *storeDriver == kvstore.DriverSQLite {
		if err := os.MkdirAll(*dbPath, 0755); err != nil {
			return nil, nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	store, err := kvstore.Open(kvstore.Config{Driver: *storeDriver, Path: storePath()})
	if err != nil {
		return nil, nil, fmt.Errorf("open image store: %w", err)
	}
	codec, err := imagecache.CodecByName(*codecName)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	cfg := imagecache.DefaultConfig()
	cfg.Codec = codec
	cfg.Fetcher = fetch.New()
	cfg.Logger = newLogger(*logLevel)
	cache := imagecache.New(store, cfg)

	return cache, func() {
		cache.Wait()
		if err := store.Close(); err != nil {
			log.Printf("Error closing image store: %v", err)
		}
	}, nil
}

func storePath() string {
	if *storeDriver == kvstore.DriverSQLite {
		return filepath.Join(*dbPath, "images.db")
	}
	return *dbPath
}

// countdown renders the page once per second until it ends or ctx is done.
func countdown(ctx context.Context, w io.Writer, page *display.Page) {
	fmt.Fprintf(w, "%s  [%s]\n", page.Message, describe(page.Background))
	for _, note := range page.Notes {
		log.Printf("Note: %s", note)
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	timer.Run(ctx, page.Countdown, timer.DefaultInterval, nil, terminalRenderer(w, stop))
}

// terminalRenderer draws each frame over the previous one and rings the bell
// once when the countdown ends. Frames after the end are ignored.
func terminalRenderer(w io.Writer, stop func()) func(timer.Display) {
	done := false
	return func(d timer.Display) {
		if done {
			return
		}
		fmt.Fprintf(w, "\r%s ", d.Text)
		if d.Ended {
			done = true
			fmt.Fprintln(w, "\a")
			stop()
		}
	}
}

func describe(ref background.DisplayRef) string {
	switch ref.Kind {
	case background.KindPattern:
		return ref.Pattern
	case background.KindImage:
		if len(ref.Image) > 48 {
			return ref.Image[:45] + "..."
		}
		return ref.Image
	default:
		return "no background"
	}
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime)
	if level == "debug" {
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}
}

// newLogger returns the structured logger handed to library packages.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
