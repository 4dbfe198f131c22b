package etag

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Entry is a remembered 200 response used to answer a later 304.
type Entry struct {
	// Data is the response body
	Data []byte

	// ETag the body was served with
	ETag string

	// StatusCode of the remembered response
	StatusCode int

	// Headers are the response headers
	Headers http.Header

	// StoredAt is when the response was remembered
	StoredAt time.Time
}

// ResponseToEntry reads the response body into an Entry.
// The response body is restored after reading.
func ResponseToEntry(resp *http.Response) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	var body []byte
	if resp.Body != nil {
		var err error
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		resp.Body.Close()
	}

	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return &Entry{
		Data:       body,
		ETag:       resp.Header.Get(HeaderETag),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		StoredAt:   time.Now(),
	}, nil
}

// EntryToResponse builds a fresh response for req from a remembered entry.
func EntryToResponse(entry *Entry, req *http.Request) *http.Response {
	header := entry.Headers.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set("Content-Length", strconv.Itoa(len(entry.Data)))

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", entry.StatusCode, http.StatusText(entry.StatusCode)),
		StatusCode:    entry.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Data)),
		ContentLength: int64(len(entry.Data)),
		Request:       req,
	}
}
