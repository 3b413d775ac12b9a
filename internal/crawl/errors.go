package crawl

import (
	"errors"
	"fmt"
)

var (
	// ErrDisallowed means robots.txt forbids the URL for our user agent
	ErrDisallowed = errors.New("disallowed by robots.txt")

	// ErrTooLarge means the response body exceeded the configured limit
	ErrTooLarge = errors.New("response body too large")

	// ErrStatus means the server answered with a non-2xx status
	ErrStatus = errors.New("unexpected status")

	// ErrNotImage means a downloaded image could not be decoded
	ErrNotImage = errors.New("not a decodable image")
)

// FetchError reports a failed download. It never reaches the extraction core;
// the crawler logs it and moves on to the next page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
