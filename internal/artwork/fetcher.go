package artwork

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound means the source answered but has no image for the track.
var ErrNotFound = errors.New("artwork not found")

// TrackRef identifies the track whose artwork is wanted.
type TrackRef struct {
	URI    string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Artist string `json:"artist" yaml:"artist"`
	Track  string `json:"track" yaml:"track"`
}

// Key is the cache key of the ref: the URI when known, otherwise the
// lower-cased artist and track.
func (r TrackRef) Key() string {
	if r.URI != "" {
		return r.URI
	}
	return strings.ToLower(r.Artist) + "\x00" + strings.ToLower(r.Track)
}

// SpotifyID returns the id of a spotify:track: URI.
func (r TrackRef) SpotifyID() (string, bool) {
	parts := strings.Split(r.URI, ":")
	if len(parts) != 3 || parts[0] != "spotify" || parts[1] != "track" || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

// Fetcher looks up an image URL for one track.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, ref TrackRef) (string, error)
}

// StatusError is an unexpected HTTP status from a source.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Temporary reports whether retrying may help.
func (e *StatusError) Temporary() bool {
	return e.Code == 429 || e.Code/100 == 5
}

// Chain tries each fetcher in order and returns the first image found.
type Chain []Fetcher

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, f := range c {
		names[i] = f.Name()
	}
	return strings.Join(names, ",")
}

// Fetch returns ErrNotFound only if every fetcher reported ErrNotFound.
// Otherwise the last other error is returned.
func (c Chain) Fetch(ctx context.Context, ref TrackRef) (string, error) {
	err := ErrNotFound
	for _, f := range c {
		url, ferr := f.Fetch(ctx, ref)
		if ferr == nil {
			return url, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !errors.Is(ferr, ErrNotFound) {
			err = fmt.Errorf("%s: %w", f.Name(), ferr)
		}
	}
	return "", err
}
