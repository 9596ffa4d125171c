package discovery

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(instance string, port int, text []string, v4 ...string) *zeroconf.ServiceEntry {
	entry := &zeroconf.ServiceEntry{}
	entry.Instance = instance
	entry.HostName = "timer-host.local."
	entry.Port = port
	entry.Text = text
	for _, a := range v4 {
		entry.AddrIPv4 = append(entry.AddrIPv4, net.ParseIP(a))
	}
	return entry
}

func TestEntryToServer(t *testing.T) {
	srv := entryToServer(newEntry("Room 1", 8080, []string{"path=/", "ver=1.0.0", "imgs=4"}, "192.168.1.20"))
	require.NotNil(t, srv)

	assert.Equal(t, "Room 1", srv.Name)
	assert.Equal(t, uint16(8080), srv.Port)
	assert.Equal(t, "/", srv.Path)
	assert.Equal(t, 4, srv.Images)
	assert.Equal(t, []string{"192.168.1.20"}, srv.Addresses)
	assert.Equal(t, "http://192.168.1.20:8080/", srv.BaseURL())
}

func TestEntryToServerSkipsForeignTXT(t *testing.T) {
	assert.Nil(t, entryToServer(newEntry("Other", 80, []string{"txtvers=1"})))
}

func TestServerBaseURL(t *testing.T) {
	srv := &Server{ServerInfo: ServerInfo{Port: 9000, Path: "/timer"}, Host: "wall.local."}
	assert.Equal(t, "http://wall.local:9000/timer", srv.BaseURL())

	srv.Addresses = []string{"fe80::1"}
	assert.Equal(t, "http://[fe80::1]:9000/timer", srv.BaseURL())
}

func TestMergeAndRemoveAddresses(t *testing.T) {
	addrs := mergeAddresses([]string{"10.0.0.1"}, []string{"10.0.0.1", "10.0.0.2"})
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, addrs)

	addrs = removeAddresses(addrs, newEntry("Room 1", 80, nil, "10.0.0.1"))
	assert.Equal(t, []string{"10.0.0.2"}, addrs)
}

func TestCollectDropsServersWithoutAddresses(t *testing.T) {
	servers := map[string]*Server{
		"a": {ServerInfo: ServerInfo{Name: "a"}, Addresses: []string{"10.0.0.1"}},
		"b": {ServerInfo: ServerInfo{Name: "b"}},
	}
	got := collect([]string{"b", "a"}, servers)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
}

func TestAdvertiserRejectsInvalidName(t *testing.T) {
	a := NewAdvertiser(DefaultConfig(), nil)
	assert.ErrorIs(t, a.Advertise(&ServerInfo{}), ErrEmptyInstanceName)
	assert.Error(t, a.Update(&ServerInfo{Name: "x"}))
	a.Stop()
}
