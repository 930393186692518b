package core

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

type mockSourceConnector struct {
	connects   int
	connectErr error
	track      *SourceTrack
	trackErr   error
	requested  []TrackID
}

func (m *mockSourceConnector) Connect(_ context.Context, _, _ string) (SourceSession, error) {
	m.connects++
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	return m, nil
}

func (m *mockSourceConnector) GetTrack(_ context.Context, id TrackID) (*SourceTrack, error) {
	m.requested = append(m.requested, id)
	if m.trackErr != nil {
		return nil, m.trackErr
	}
	track := *m.track
	track.ID = id
	return &track, nil
}

type mockDestinationConnector struct {
	connects   int
	connectErr error
	results    []DestinationTrack
	searchErr  error
	queries    []string
	limits     []int
}

func (m *mockDestinationConnector) Connect(_ context.Context, _, _ string) (DestinationSession, error) {
	m.connects++
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	return m, nil
}

func (m *mockDestinationConnector) SearchTracks(_ context.Context, query string, limit int) ([]DestinationTrack, error) {
	m.queries = append(m.queries, query)
	m.limits = append(m.limits, limit)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func newTestConfig() *Config {
	config := DefaultConfig()
	config.Spotify.ClientID = "client-id"
	config.Spotify.ClientSecret = "client-secret"
	config.Qobuz.Email = "dj@example.com"
	config.Qobuz.Password = "hunter2"
	return config
}

func newBeatlesSource() *mockSourceConnector {
	return &mockSourceConnector{
		track: &SourceTrack{
			Title:       "Yesterday",
			Artist:      "The Beatles",
			Artists:     []string{"The Beatles"},
			Album:       "Help!",
			ReleaseDate: "1965-08-06",
			Popularity:  80,
		},
	}
}

func TestConverter_Convert_Success(t *testing.T) {
	source := newBeatlesSource()
	destination := &mockDestinationConnector{
		results: []DestinationTrack{
			{ID: "12345", Title: "Yesterday", Artist: "The Beatles", URL: "https://play.qobuz.com/track/12345"},
		},
	}

	converter := NewConverter(newTestConfig(), source, destination, zap.NewNop())
	result, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123?si=1")
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}

	if result.Link != "https://open.qobuz.com/track/12345" {
		t.Errorf("Link = %q, want %q", result.Link, "https://open.qobuz.com/track/12345")
	}
	if !reflect.DeepEqual(source.requested, []TrackID{"abc123"}) {
		t.Errorf("Source requested %v, want [abc123]", source.requested)
	}
	if !reflect.DeepEqual(destination.queries, []string{"The Beatles Yesterday"}) {
		t.Errorf("Destination queries = %v, want [The Beatles Yesterday]", destination.queries)
	}
	if !reflect.DeepEqual(destination.limits, []int{SearchLimit}) {
		t.Errorf("Destination limits = %v, want [%d]", destination.limits, SearchLimit)
	}
	if result.RequestID == "" {
		t.Error("Expected a request ID on the result")
	}
	if result.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", result.Confidence)
	}
	if result.Source.Album != "Help!" {
		t.Errorf("Source album = %q, want Help!", result.Source.Album)
	}
}

func TestConverter_Convert_InvalidInputMakesNoCalls(t *testing.T) {
	source := newBeatlesSource()
	destination := &mockDestinationConnector{}

	converter := NewConverter(newTestConfig(), source, destination, zap.NewNop())
	_, err := converter.Convert(context.Background(), "https://open.spotify.com/album/xyz")

	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Convert() error = %v, want %v", err, ErrInvalidInput)
	}
	var convErr *ConversionError
	if errors.As(err, &convErr) && convErr.RequestID == "" {
		t.Error("Expected failure to carry the request ID")
	}
	if source.connects != 0 || destination.connects != 0 {
		t.Errorf("Expected no network calls, got source=%d destination=%d", source.connects, destination.connects)
	}
}

func TestConverter_Convert_MissingCredentials(t *testing.T) {
	config := newTestConfig()
	config.Spotify.ClientSecret = ""
	config.Qobuz.Email = ""

	source := newBeatlesSource()
	destination := &mockDestinationConnector{}

	converter := NewConverter(config, source, destination, zap.NewNop())
	_, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123")

	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Convert() error = %v, want missing credentials", err)
	}
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Convert() error %T is not a *ConversionError", err)
	}
	expected := []string{EnvSpotifyClientSecret, EnvQobuzEmail}
	if !reflect.DeepEqual(convErr.Missing, expected) {
		t.Errorf("Missing = %v, want %v", convErr.Missing, expected)
	}
	if source.connects != 0 || destination.connects != 0 {
		t.Errorf("Expected no network calls, got source=%d destination=%d", source.connects, destination.connects)
	}
}

func TestConverter_Convert_NoMatch(t *testing.T) {
	destination := &mockDestinationConnector{}

	converter := NewConverter(newTestConfig(), newBeatlesSource(), destination, zap.NewNop())
	result, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123")

	if result != nil {
		t.Errorf("Expected no result, got %+v", result)
	}
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("Convert() error = %v, want no match", err)
	}
	if err.Error() != "no track found on Qobuz" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestConverter_Convert_UpstreamFailures(t *testing.T) {
	cause := errors.New("upstream exploded")

	tests := []struct {
		name        string
		source      *mockSourceConnector
		destination *mockDestinationConnector
		expected    error
	}{
		{
			name: "Source auth failure",
			source: &mockSourceConnector{
				connectErr: cause,
			},
			destination: &mockDestinationConnector{},
			expected:    ErrSourceAuth,
		},
		{
			name: "Track not found",
			source: &mockSourceConnector{
				trackErr: cause,
			},
			destination: &mockDestinationConnector{},
			expected:    ErrTrackNotFound,
		},
		{
			name:   "Destination auth failure",
			source: newBeatlesSource(),
			destination: &mockDestinationConnector{
				connectErr: cause,
			},
			expected: ErrDestinationAuth,
		},
		{
			name:   "Destination search failure",
			source: newBeatlesSource(),
			destination: &mockDestinationConnector{
				searchErr: cause,
			},
			expected: ErrDestinationSearch,
		},
		{
			name: "Kind reported by connector is kept",
			source: &mockSourceConnector{
				trackErr: NewError(KindSourceAuth, cause),
			},
			destination: &mockDestinationConnector{},
			expected:    ErrSourceAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			converter := NewConverter(newTestConfig(), tt.source, tt.destination, zap.NewNop())
			_, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123")

			if !errors.Is(err, tt.expected) {
				t.Fatalf("Convert() error = %v, want %v", err, tt.expected)
			}
			if !errors.Is(err, cause) {
				t.Errorf("Expected error chain to contain the upstream cause, got %v", err)
			}
		})
	}
}

func TestConverter_Resolve(t *testing.T) {
	source := newBeatlesSource()
	destination := &mockDestinationConnector{
		results: []DestinationTrack{
			{ID: "12345", Title: "Yesterday", Artist: "The Beatles", URL: "https://play.qobuz.com/track/12345"},
		},
	}

	converter := NewConverter(newTestConfig(), source, destination, zap.NewNop())
	result, err := converter.Resolve(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}

	if result.Link != "https://open.qobuz.com/track/12345" {
		t.Errorf("Link = %q, want %q", result.Link, "https://open.qobuz.com/track/12345")
	}
	if result.TrackID != "abc123" {
		t.Errorf("TrackID = %q, want abc123", result.TrackID)
	}
	if result.RequestID == "" {
		t.Error("Expected a request ID on the result")
	}
	if !reflect.DeepEqual(source.requested, []TrackID{"abc123"}) {
		t.Errorf("Source requested %v, want [abc123]", source.requested)
	}
}

func TestConverter_Resolve_MissingCredentials(t *testing.T) {
	config := newTestConfig()
	config.Qobuz.Password = ""

	source := newBeatlesSource()
	destination := &mockDestinationConnector{}

	converter := NewConverter(config, source, destination, zap.NewNop())
	_, err := converter.Resolve(context.Background(), "abc123")

	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Resolve() error = %v, want missing credentials", err)
	}
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Resolve() error %T is not a *ConversionError", err)
	}
	if !reflect.DeepEqual(convErr.Missing, []string{EnvQobuzPassword}) {
		t.Errorf("Missing = %v, want [%s]", convErr.Missing, EnvQobuzPassword)
	}
	if convErr.RequestID == "" {
		t.Error("Expected failure to carry the request ID")
	}
	if source.connects != 0 || destination.connects != 0 {
		t.Errorf("Expected no network calls, got source=%d destination=%d", source.connects, destination.connects)
	}
}

func TestConverter_Convert_FreshSessionsPerCall(t *testing.T) {
	source := newBeatlesSource()
	destination := &mockDestinationConnector{
		results: []DestinationTrack{{ID: "1", URL: "https://play.qobuz.com/track/1"}},
	}

	converter := NewConverter(newTestConfig(), source, destination, zap.NewNop())
	for i := 0; i < 2; i++ {
		if _, err := converter.Convert(context.Background(), "https://open.spotify.com/track/abc123"); err != nil {
			t.Fatalf("Convert() #%d unexpected error: %v", i+1, err)
		}
	}

	if source.connects != 2 || destination.connects != 2 {
		t.Errorf("Expected a new session per conversion, got source=%d destination=%d",
			source.connects, destination.connects)
	}
}
