package discovery

import (
	"errors"
	"net"
	"strconv"
	"time"
)

const (
	// ServiceType is the DNS-SD service type of a timer server.
	ServiceType = "_timerwall._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default HTTP port of a timer server.
	DefaultPort = 8080

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyPath    = "path"
	TXTKeyVersion = "ver"
	TXTKeyImages  = "imgs"
)

var (
	ErrMissingRequired     = errors.New("missing required field")
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrEmptyInstanceName   = errors.New("instance name is empty")
)

// ServerInfo is what a timer server advertises.
type ServerInfo struct {
	// Name is the instance name, e.g. "Classroom 3".
	Name string

	// Port is the HTTP port.
	Port uint16

	// Path is the URL path of the timer page.
	Path string

	// Version is the server version.
	Version string

	// Images is the number of cached images, -1 if not advertised.
	Images int
}

// Server is a timer server found on the network.
type Server struct {
	ServerInfo

	Host      string
	Addresses []string
}

// BaseURL returns the URL of the server's timer page, preferring the first
// resolved address over the host name.
func (s *Server) BaseURL() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return "http://" + net.JoinHostPort(trimDot(host), strconv.Itoa(int(s.Port))) + s.Path
}

func trimDot(host string) string {
	if n := len(host); n > 0 && host[n-1] == '.' {
		return host[:n-1]
	}
	return host
}

// Config configures advertising and browsing.
type Config struct {
	// Interface restricts mDNS to one network interface.
	// Empty string means all interfaces.
	Interface string `yaml:"interface"`

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration `yaml:"ttl"`

	// BrowseTimeout bounds a Browse call that has no deadline.
	// Default: 3 seconds.
	BrowseTimeout time.Duration `yaml:"browseTimeout"`
}

// DefaultConfig returns the default discovery configuration.
func DefaultConfig() Config {
	return Config{
		TTL:           120 * time.Second,
		BrowseTimeout: 3 * time.Second,
	}
}
