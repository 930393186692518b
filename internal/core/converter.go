package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"songbridge/pkg/fuzzy"
)

// SearchLimit is the number of destination candidates requested; only the first is used.
const SearchLimit = 1

// Converter turns a Spotify track link into a Qobuz link. It holds no per-request state.
type Converter struct {
	credentials Credentials
	source      SourceConnector
	destination DestinationConnector
	normalizer  *fuzzy.Normalizer
	timeout     time.Duration
	logger      *zap.Logger
}

func NewConverter(config *Config, source SourceConnector, destination DestinationConnector,
	logger *zap.Logger) *Converter {
	return &Converter{
		credentials: config.Credentials(),
		source:      source,
		destination: destination,
		normalizer:  fuzzy.NewNormalizer(),
		timeout:     config.App.UpstreamTimeout,
		logger:      logger,
	}
}

// MissingCredentials lists the credential variables that are not configured.
func (c *Converter) MissingCredentials() []string {
	return c.credentials.Missing()
}

// Convert runs extraction and resolution for one input link. Every failure is a
// *ConversionError.
func (c *Converter) Convert(ctx context.Context, rawURL string) (*Result, error) {
	requestID, logger := c.newRequest()

	trackID, err := ExtractTrackID(rawURL)
	if err != nil {
		logger.Error("No track ID found in link", zap.String("input", rawURL))
		return nil, withRequestID(err, requestID)
	}
	logger.Info("Extracted track ID", zap.String("track_id", string(trackID)))

	return c.resolveRequest(ctx, trackID, requestID, logger)
}

// Resolve looks the track up on the source, searches the destination and returns the
// normalised link of the first candidate.
func (c *Converter) Resolve(ctx context.Context, trackID TrackID) (*Result, error) {
	requestID, logger := c.newRequest()
	return c.resolveRequest(ctx, trackID, requestID, logger)
}

func (c *Converter) newRequest() (string, *zap.Logger) {
	requestID := uuid.NewString()
	return requestID, c.logger.With(zap.String("request_id", requestID))
}

func (c *Converter) resolveRequest(ctx context.Context, trackID TrackID, requestID string,
	logger *zap.Logger) (*Result, error) {
	result, err := c.resolve(ctx, trackID, logger)
	if err != nil {
		return nil, withRequestID(err, requestID)
	}
	result.RequestID = requestID
	return result, nil
}

func (c *Converter) resolve(ctx context.Context, trackID TrackID, logger *zap.Logger) (*Result, error) {
	if missing := c.credentials.Missing(); len(missing) > 0 {
		logger.Error("Missing credentials", zap.Strings("missing", missing))
		return nil, &ConversionError{Kind: KindMissingCredentials, Missing: missing}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	source, err := c.source.Connect(ctx, c.credentials.SpotifyClientID, c.credentials.SpotifyClientSecret)
	if err != nil {
		logger.Error("Failed to establish Spotify session", zap.Error(err))
		return nil, ensureKind(err, KindSourceAuth)
	}

	track, err := source.GetTrack(ctx, trackID)
	if err != nil {
		logger.Error("Failed to fetch Spotify track", zap.String("track_id", string(trackID)), zap.Error(err))
		return nil, ensureKind(err, KindTrackNotFound)
	}

	logger.Info("Spotify track information",
		zap.String("name", track.Title),
		zap.String("artist", track.Artist),
		zap.String("album", track.Album),
		zap.String("release_date", track.ReleaseDate),
		zap.Int("popularity", track.Popularity),
		zap.String("preview_url", track.PreviewURL))

	destination, err := c.destination.Connect(ctx, c.credentials.QobuzEmail, c.credentials.QobuzPassword)
	if err != nil {
		logger.Error("Failed to establish Qobuz session", zap.Error(err))
		return nil, ensureKind(err, KindDestinationAuth)
	}

	query := SearchQuery(track)
	logger.Info("Searching Qobuz", zap.String("query", query))

	candidates, err := destination.SearchTracks(ctx, query, SearchLimit)
	if err != nil {
		logger.Error("Qobuz search failed", zap.String("query", query), zap.Error(err))
		return nil, ensureKind(err, KindDestinationSearch)
	}

	if len(candidates) == 0 {
		logger.Error("No track found on Qobuz", zap.String("query", query))
		return nil, &ConversionError{Kind: KindNoMatch}
	}

	match := candidates[0]
	confidence := c.normalizer.MatchConfidence(track.Artist, track.Title, match.Artist, match.Title)
	link := NormalizeLink(match.URL)

	logger.Info("Converted track",
		zap.String("qobuz_id", match.ID),
		zap.String("link", link),
		zap.Float64("confidence", confidence))

	return &Result{
		TrackID:    trackID,
		Source:     *track,
		Match:      match,
		Query:      query,
		Link:       link,
		Confidence: confidence,
	}, nil
}
