package core

import (
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

const (
	// DefaultServerPort is the default HTTP server port
	DefaultServerPort = 8080
	// DefaultUpstreamTimeoutSecs bounds every outbound provider call
	DefaultUpstreamTimeoutSecs = 15
	// DefaultQobuzSessionTTLMins is how long a cached Qobuz session stays valid
	DefaultQobuzSessionTTLMins = 60
	// DefaultQobuzSessionCacheSize is the number of credential sets kept in the session cache
	DefaultQobuzSessionCacheSize = 16
	// DefaultLanguage is the UI language used when none is configured
	DefaultLanguage = "en"
)

// Environment variable names of the four required credentials.
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvQobuzEmail          = "QOBUZ_EMAIL"
	EnvQobuzPassword       = "QOBUZ_PASSWORD"
)

type Config struct {
	Spotify SpotifyConfig
	Qobuz   QobuzConfig
	Server  ServerConfig
	Log     LogConfig
	App     AppConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIBaseURL   string
}

type QobuzConfig struct {
	Email         string
	Password      string
	AppID         string
	AppSecret     string
	APIBaseURL    string
	WebPlayerURL  string
	SessionCache  bool
	SessionTTL    time.Duration
	SessionCacheN int
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Language            string
	FloodLimitPerMinute int
	UpstreamTimeout     time.Duration
}

// Credentials returns the four values a conversion needs.
func (c *Config) Credentials() Credentials {
	return Credentials{
		SpotifyClientID:     c.Spotify.ClientID,
		SpotifyClientSecret: c.Spotify.ClientSecret,
		QobuzEmail:          c.Qobuz.Email,
		QobuzPassword:       c.Qobuz.Password,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			TokenURL:   spotifyauth.TokenURL,
			APIBaseURL: "https://api.spotify.com/v1/",
		},
		Qobuz: QobuzConfig{
			APIBaseURL:    "https://www.qobuz.com/api.json/0.2/",
			WebPlayerURL:  "https://play.qobuz.com",
			SessionTTL:    DefaultQobuzSessionTTLMins * time.Minute,
			SessionCacheN: DefaultQobuzSessionCacheSize,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:        DefaultLanguage,
			UpstreamTimeout: DefaultUpstreamTimeoutSecs * time.Second,
		},
	}
}
