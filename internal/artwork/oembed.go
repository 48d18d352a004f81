package artwork

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
)

const spotifyOEmbed = "https://open.spotify.com/oembed"

// OEmbed fetches thumbnails from Spotify's public oEmbed endpoint. It needs
// a spotify:track: URI and no credentials.
type OEmbed struct {
	Client *http.Client

	// Endpoint overrides the oEmbed URL.
	Endpoint string
}

type oembedResponse struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (o *OEmbed) Name() string { return "oembed" }

func (o *OEmbed) Fetch(ctx context.Context, ref TrackRef) (string, error) {
	id, ok := ref.SpotifyID()
	if !ok {
		return "", ErrNotFound
	}

	endpoint := o.Endpoint
	if endpoint == "" {
		endpoint = spotifyOEmbed
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", "https://open.spotify.com/track/"+id)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return "", ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return "", &StatusError{Code: resp.StatusCode}
	}

	var body oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding oembed response: %w", err)
	}
	if body.ThumbnailURL == "" {
		return "", ErrNotFound
	}
	return body.ThumbnailURL, nil
}
