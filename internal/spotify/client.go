// Package spotify provides the Spotify Web API source session used to look up track metadata.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"songbridge/internal/core"
)

// Connector opens client-credentials sessions against the Spotify Web API.
type Connector struct {
	config     *core.SpotifyConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// Client is one authenticated application-level Spotify session.
type Client struct {
	client *spotify.Client
	logger *zap.Logger
}

// NewConnector creates a connector. httpClient is used for both the token and API calls;
// nil means http.DefaultClient.
func NewConnector(config *core.SpotifyConfig, httpClient *http.Client, logger *zap.Logger) *Connector {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Connector{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Connect fetches an application token and returns a session bound to it.
func (c *Connector) Connect(ctx context.Context, clientID, clientSecret string) (core.SourceSession, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	ccConfig := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     c.config.TokenURL,
	}

	tokenSource := ccConfig.TokenSource(ctx)
	token, err := tokenSource.Token()
	if err != nil {
		return nil, core.NewError(core.KindSourceAuth, fmt.Errorf("failed to obtain client credentials token: %w", err))
	}

	httpClient := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, tokenSource))

	var opts []spotify.ClientOption
	if c.config.APIBaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(c.config.APIBaseURL))
	}

	c.logger.Debug("Spotify session established", zap.Time("token_expiry", token.Expiry))

	return &Client{
		client: spotify.New(httpClient, opts...),
		logger: c.logger,
	}, nil
}

// GetTrack fetches the track and converts it to source metadata.
func (c *Client) GetTrack(ctx context.Context, id core.TrackID) (*core.SourceTrack, error) {
	track, err := c.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, classifyError(err)
	}

	sourceTrack := convertSpotifyTrack(track)
	return &sourceTrack, nil
}

// classifyError maps Spotify API errors onto conversion error kinds.
func classifyError(err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusNotFound:
			return core.NewError(core.KindTrackNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return core.NewError(core.KindSourceAuth, err)
		}
	}
	return core.NewError(core.KindTrackNotFound, fmt.Errorf("failed to get track: %w", err))
}

func convertSpotifyTrack(track *spotify.FullTrack) core.SourceTrack {
	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	var primary string
	if len(artists) > 0 {
		primary = artists[0]
	}

	return core.SourceTrack{
		ID:          core.TrackID(track.ID),
		Title:       track.Name,
		Artist:      primary,
		Artists:     artists,
		Album:       track.Album.Name,
		ReleaseDate: track.Album.ReleaseDate,
		Popularity:  int(track.Popularity),
		PreviewURL:  track.PreviewURL,
		URL:         track.ExternalURLs["spotify"],
	}
}
