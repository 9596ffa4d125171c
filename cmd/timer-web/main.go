// Command timer-web serves the countdown timer page and its image cache API.
//
// It offers:
//   - the timer page, configured entirely by its ?timer=&wall=&msg= query
//   - a JSON API that resolves a page, manages cached background images and
//     builds share URLs
//   - optional mDNS advertising so terminal clients can find the server
//
// Usage:
//
//	timer-web [flags]
//
// Flags:
//
//	-port int          HTTP server port (default 8080)
//	-config string     YAML configuration file
//	-store string      Image store: memory, file, sqlite (default "sqlite")
//	-db string         Store path: directory for file, database for sqlite (default "./timer-web.db")
//	-codec string      Image collection encoding: json, cbor (default "json")
//	-quota int         Maximum stored collection size in bytes, 0 for unlimited
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-mdns string       Advertise on mDNS under this name, empty to disable
//
// Examples:
//
//	# Start the web server on the default port
//	timer-web
//
//	# Keep images in memory only, with a 5 MB cap like a browser's local storage
//	timer-web -store memory -quota 5000000
//
//	# Advertise the server on the LAN
//	timer-web -mdns "Classroom 3"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mehmetsinc/timer-takimca/pkg/discovery"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

var (
	port        = flag.Int("port", 8080, "HTTP server port")
	configPath  = flag.String("config", "", "YAML configuration file")
	storeDriver = flag.String("store", "sqlite", "Image store: memory, file, sqlite")
	dbPath      = flag.String("db", "./timer-web.db", "Store path: directory for file, database for sqlite")
	codecName   = flag.String("codec", "json", "Image collection encoding: json, cbor")
	quota       = flag.Int("quota", 0, "Maximum stored collection size in bytes, 0 for unlimited")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	mdnsName    = flag.String("mdns", "", "Advertise on mDNS under this name, empty to disable")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("timer-web %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Configure logging
	setupLogging(cfg.LogLevel)
	logger := newLogger(cfg.LogLevel)

	srvCfg := cfg.ServerConfig()
	srvCfg.Version = Version
	srvCfg.Logger = logger

	srv, err := NewServer(srvCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create server: %v\n", err)
		return 1
	}
	defer srv.Close()

	if cfg.MDNS.Name != "" {
		adv := discovery.NewAdvertiser(cfg.MDNS.Config, logger)
		info := discovery.ServerInfo{
			Name:    cfg.MDNS.Name,
			Port:    uint16(cfg.Port),
			Path:    "/",
			Version: Version,
			Images:  srv.cache.Count(),
		}
		if err := adv.Advertise(&info); err != nil {
			log.Printf("Warning: mDNS advertising disabled: %v", err)
		} else {
			defer adv.Stop()
			srv.OnImagesChanged(func(count int) {
				updated := info
				updated.Images = count
				if err := adv.Update(&updated); err != nil {
					log.Printf("Warning: mDNS update failed: %v", err)
				}
			})
			log.Printf("Advertising %q on mDNS", cfg.MDNS.Name)
		}
	}

	log.Printf("Starting timer-web on http://localhost:%d", cfg.Port)
	log.Printf("Store: %s %s (codec %s)", cfg.Store.Driver, cfg.Store.Path, cfg.Codec)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Error: server failed: %v\n", err)
			return 1
		}
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}

	return 0
}

// loadConfig merges defaults, the optional config file and explicitly set
// flags, in that order.
func loadConfig() (Config, error) {
	cfg := DefaultConfig()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "store":
			cfg.Store.Driver = *storeDriver
		case "db":
			cfg.Store.Path = *dbPath
		case "codec":
			cfg.Codec = *codecName
		case "quota":
			cfg.Store.Quota = *quota
		case "log-level":
			cfg.LogLevel = *logLevel
		case "mdns":
			cfg.MDNS.Name = *mdnsName
		}
	})

	return cfg, cfg.Validate()
}

func setupLogging(level string) {
	log.SetFlags(log.Ldate | log.Ltime)
	if level == "debug" {
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}
}

// newLogger returns the structured logger handed to library packages.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
