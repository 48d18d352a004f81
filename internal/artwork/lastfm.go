package artwork

import (
	"context"

	"github.com/ademuri/lastfm-go/lastfm"
)

// Preferred last.fm image sizes, largest first.
var lastfmSizes = []string{"extralarge", "large", "medium", "small"}

// TrackInfoFunc calls last.fm's track.getInfo.
type TrackInfoFunc func(lastfm.P) (lastfm.TrackGetInfo, error)

// LastFM fetches the album image of a track from last.fm by artist and
// track name.
type LastFM struct {
	GetInfo TrackInfoFunc
}

// NewLastFM returns a fetcher backed by api.
func NewLastFM(api *lastfm.Api) *LastFM {
	return &LastFM{GetInfo: func(p lastfm.P) (lastfm.TrackGetInfo, error) {
		return api.Track.GetInfo(p)
	}}
}

func (l *LastFM) Name() string { return "last.fm" }

func (l *LastFM) Fetch(ctx context.Context, ref TrackRef) (string, error) {
	if ref.Artist == "" || ref.Track == "" {
		return "", ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := l.GetInfo(lastfm.P{
		"artist":      ref.Artist,
		"track":       ref.Track,
		"autocorrect": 1,
	})
	if err != nil {
		if lerr, ok := err.(*lastfm.LastfmError); ok && lerr.Code == 6 {
			return "", ErrNotFound
		}
		return "", err
	}

	images := make(map[string]string, len(info.Album.Images))
	for _, img := range info.Album.Images {
		if img.Url != "" {
			images[img.Size] = img.Url
		}
	}
	for _, size := range lastfmSizes {
		if u, ok := images[size]; ok {
			return u, nil
		}
	}
	return "", ErrNotFound
}
