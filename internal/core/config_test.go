package core

import (
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.App.Language != DefaultLanguage {
		t.Errorf("Expected default language to be %s, got %s", DefaultLanguage, config.App.Language)
	}

	if config.Server.Port != DefaultServerPort {
		t.Errorf("Expected default port %d, got %d", DefaultServerPort, config.Server.Port)
	}

	if config.Qobuz.SessionCache {
		t.Error("Expected Qobuz session cache to be disabled by default")
	}

	if config.App.FloodLimitPerMinute != 0 {
		t.Errorf("Expected flood gate to be disabled by default, got %d", config.App.FloodLimitPerMinute)
	}

	if config.Spotify.TokenURL == "" || config.Spotify.APIBaseURL == "" {
		t.Error("Expected Spotify endpoints to have defaults")
	}
}

func TestCredentials_Missing(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		expected []string
	}{
		{
			name: "All present",
			creds: Credentials{
				SpotifyClientID:     "id",
				SpotifyClientSecret: "secret",
				QobuzEmail:          "me@example.com",
				QobuzPassword:       "pw",
			},
			expected: nil,
		},
		{
			name:  "All missing",
			creds: Credentials{},
			expected: []string{
				EnvSpotifyClientID, EnvSpotifyClientSecret, EnvQobuzEmail, EnvQobuzPassword,
			},
		},
		{
			name: "Only Qobuz email missing",
			creds: Credentials{
				SpotifyClientID:     "id",
				SpotifyClientSecret: "secret",
				QobuzPassword:       "pw",
			},
			expected: []string{EnvQobuzEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.creds.Missing(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Missing() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_Credentials(t *testing.T) {
	config := DefaultConfig()
	config.Spotify.ClientID = "id"
	config.Qobuz.Password = "pw"

	creds := config.Credentials()
	if creds.SpotifyClientID != "id" || creds.QobuzPassword != "pw" {
		t.Errorf("Credentials() = %+v", creds)
	}
}
