package core

import (
	"context"
)

// TrackID is the opaque alphanumeric token naming a track in the Spotify catalog.
type TrackID string

// SourceTrack is the metadata fetched from the source provider. Only Title and Artist
// feed the destination search; the rest is diagnostic.
type SourceTrack struct {
	ID          TrackID
	Title       string
	Artist      string
	Artists     []string
	Album       string
	ReleaseDate string
	Popularity  int
	PreviewURL  string
	URL         string
}

// DestinationTrack is one ranked candidate from the destination catalog search.
type DestinationTrack struct {
	ID     string
	Title  string
	Artist string
	Album  string
	URL    string
}

// Result is a successful conversion.
type Result struct {
	RequestID  string
	TrackID    TrackID
	Source     SourceTrack
	Match      DestinationTrack
	Query      string
	Link       string
	Confidence float64
}

// Credentials are the four out-of-band values a conversion needs.
type Credentials struct {
	SpotifyClientID     string
	SpotifyClientSecret string
	QobuzEmail          string
	QobuzPassword       string
}

// Missing returns the environment variable names of every empty credential.
func (c Credentials) Missing() []string {
	var missing []string
	if c.SpotifyClientID == "" {
		missing = append(missing, EnvSpotifyClientID)
	}
	if c.SpotifyClientSecret == "" {
		missing = append(missing, EnvSpotifyClientSecret)
	}
	if c.QobuzEmail == "" {
		missing = append(missing, EnvQobuzEmail)
	}
	if c.QobuzPassword == "" {
		missing = append(missing, EnvQobuzPassword)
	}
	return missing
}

// SourceConnector opens an application-level session against the source provider.
type SourceConnector interface {
	Connect(ctx context.Context, clientID, clientSecret string) (SourceSession, error)
}

type SourceSession interface {
	GetTrack(ctx context.Context, id TrackID) (*SourceTrack, error)
}

// DestinationConnector performs the destination bootstrap and account login.
type DestinationConnector interface {
	Connect(ctx context.Context, email, password string) (DestinationSession, error)
}

type DestinationSession interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]DestinationTrack, error)
}
