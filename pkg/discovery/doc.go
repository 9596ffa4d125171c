// Package discovery advertises and finds timer servers on the local network
// using mDNS/DNS-SD.
//
// A server registers one instance of the _timerwall._tcp service. The
// instance name is the user-facing server name; TXT records carry:
//
//	path  URL path of the timer page (required)
//	ver   server version (required)
//	imgs  number of cached images (optional)
//
// Clients browse for the service and open
// http://<host>:<port><path>?timer=...&wall=...&msg=... on a server.
package discovery
