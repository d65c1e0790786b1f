package httptelemetry

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Record is the transient per-request state captured when a request enters
// the middleware. The entry fields are immutable once captured; route is
// filled in during finalization.
type Record struct {
	start      time.Time
	method     string
	scheme     string
	host       string
	path       string
	query      string
	proto      string // protocol version, e.g. "1.1"
	userAgent  string
	requestLen int64 // -1 when the request carried no Content-Length

	// server address override captured at entry; see WithServerAddress
	srvHost string
	srvPort int
	srvSet  bool

	// set while resolving attributes at finalization
	route string
}

func newRecord(start time.Time, r *http.Request) *Record {
	return &Record{
		start:      start,
		method:     r.Method,
		scheme:     scheme(r),
		host:       r.Host,
		path:       r.URL.Path,
		query:      r.URL.RawQuery,
		proto:      strings.TrimPrefix(r.Proto, "HTTP/"),
		userAgent:  r.UserAgent(),
		requestLen: r.ContentLength,
	}
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// serverAddress splits the captured Host header into address and port,
// defaulting the port from the scheme when the header carries none.
func (rec *Record) serverAddress() (string, int) {
	if rec.srvSet {
		return rec.srvHost, rec.srvPort
	}

	host, port, err := net.SplitHostPort(rec.host)
	if err != nil {
		if rec.scheme == "https" {
			return rec.host, 443
		}
		return rec.host, 80
	}

	p, err := strconv.Atoi(port)
	if err != nil {
		p = 0
	}
	return host, p
}

// outcomeKind classifies how a request terminated.
type outcomeKind int

const (
	// outcomeResponse means the handler chain produced a response.
	outcomeResponse outcomeKind = iota
	// outcomeError means the handler chain failed before completing.
	outcomeError
	// outcomeCancelled means the request context was canceled before a
	// response was written.
	outcomeCancelled
)

// outcome carries the termination facts handed to finalization.
type outcome struct {
	kind        outcomeKind
	status      int   // 0 when no response was produced
	responseLen int64 // bytes written, valid for outcomeResponse
	err         error
}
