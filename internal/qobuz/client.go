// Package qobuz implements the Qobuz destination session: web player bootstrap,
// account login, secret validation and catalog search.
package qobuz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"songbridge/internal/core"
	"songbridge/internal/store"
)

const (
	// TrackLinkBase is the web player link prefix of a track; the id is appended.
	TrackLinkBase = "https://play.qobuz.com/track/"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

	// secretCheckTrackID and secretCheckFormatID are used to test candidate secrets.
	secretCheckTrackID  = "5966783"
	secretCheckFormatID = 5

	maxResponseSize = 4 << 20
)

// StatusError is returned when a Qobuz endpoint answers with an unexpected status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Connector creates authenticated Qobuz sessions, optionally reusing them through a cache.
type Connector struct {
	config       *core.QobuzConfig
	httpClient   *http.Client
	bootstrapper *Bootstrapper
	cache        *store.SessionCache[*Session]
	logger       *zap.Logger
}

// Session is one logged-in Qobuz client.
type Session struct {
	appID      string
	secret     string
	authToken  string
	apiBaseURL string
	httpClient *http.Client
	logger     *zap.Logger
	invalidate func()
}

// NewConnector creates a connector. cache may be nil to open a fresh session per call.
func NewConnector(config *core.QobuzConfig, httpClient *http.Client, cache *store.SessionCache[*Session],
	logger *zap.Logger) *Connector {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Connector{
		config:       config,
		httpClient:   httpClient,
		bootstrapper: NewBootstrapper(config.WebPlayerURL, httpClient),
		cache:        cache,
		logger:       logger,
	}
}

// Connect bootstraps the app credentials, logs in and validates a secret.
func (c *Connector) Connect(ctx context.Context, email, password string) (core.DestinationSession, error) {
	passwordHash := HashPassword(password)
	key := store.CredentialKey(email, passwordHash)

	if c.cache != nil {
		if session, ok := c.cache.Get(key); ok {
			c.logger.Debug("Reusing cached Qobuz session")
			return session, nil
		}
	}

	app, err := c.appCredentials(ctx)
	if err != nil {
		return nil, core.NewError(core.KindDestinationAuth, fmt.Errorf("bootstrap failed: %w", err))
	}

	session := &Session{
		appID:      app.AppID,
		apiBaseURL: c.config.APIBaseURL,
		httpClient: c.httpClient,
		logger:     c.logger,
	}

	if err := session.login(ctx, email, passwordHash); err != nil {
		return nil, core.NewError(core.KindDestinationAuth, err)
	}

	if err := session.selectSecret(ctx, app.Secrets); err != nil {
		return nil, core.NewError(core.KindDestinationAuth, err)
	}

	c.logger.Info("Qobuz session established",
		zap.String("app_id", session.appID),
		zap.Bool("secret_validated", session.secret != ""))

	if c.cache != nil {
		session.invalidate = func() { c.cache.Invalidate(key) }
		c.cache.Add(key, session)
	}

	return session, nil
}

func (c *Connector) appCredentials(ctx context.Context) (*AppCredentials, error) {
	if c.config.AppID != "" && c.config.AppSecret != "" {
		return &AppCredentials{AppID: c.config.AppID, Secrets: []string{c.config.AppSecret}}, nil
	}

	app, err := c.bootstrapper.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched Qobuz app credentials",
		zap.String("app_id", app.AppID),
		zap.Int("secrets", len(app.Secrets)))
	return app, nil
}

type loginResponse struct {
	UserAuthToken string `json:"user_auth_token"`
	User          struct {
		Credential struct {
			Parameters json.RawMessage `json:"parameters"`
		} `json:"credential"`
	} `json:"user"`
}

func (s *Session) login(ctx context.Context, email, passwordHash string) error {
	params := url.Values{}
	params.Set("email", email)
	params.Set("password", passwordHash)
	params.Set("app_id", s.appID)

	body, status, err := s.call(ctx, "user/login", params)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return errors.New("invalid email or password")
	case http.StatusBadRequest:
		return fmt.Errorf("invalid app id %s", s.appID)
	default:
		return &StatusError{Endpoint: "user/login", StatusCode: status, Message: apiMessage(body)}
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}

	parameters := bytes.TrimSpace(resp.User.Credential.Parameters)
	if len(parameters) == 0 || bytes.Equal(parameters, []byte("null")) {
		return errors.New("free accounts are not eligible")
	}
	if resp.UserAuthToken == "" {
		return errors.New("login response did not contain a user auth token")
	}

	s.authToken = resp.UserAuthToken
	return nil
}

// selectSecret keeps the first candidate secret Qobuz accepts for a signed request.
func (s *Session) selectSecret(ctx context.Context, secrets []string) error {
	for _, secret := range secrets {
		ok, err := s.testSecret(ctx, secret)
		if err != nil {
			return err
		}
		if ok {
			s.secret = secret
			return nil
		}
	}
	return errors.New("no valid app secret")
}

func (s *Session) testSecret(ctx context.Context, secret string) (bool, error) {
	timestamp := time.Now().Unix()

	params := url.Values{}
	params.Set("request_ts", strconv.FormatInt(timestamp, 10))
	params.Set("request_sig", FileURLSignature(secretCheckTrackID, secretCheckFormatID, timestamp, secret))
	params.Set("track_id", secretCheckTrackID)
	params.Set("format_id", strconv.Itoa(secretCheckFormatID))
	params.Set("intent", "stream")

	body, status, err := s.call(ctx, "track/getFileUrl", params)
	if err != nil {
		return false, fmt.Errorf("secret validation request failed: %w", err)
	}

	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusBadRequest:
		return false, nil
	default:
		return false, &StatusError{Endpoint: "track/getFileUrl", StatusCode: status, Message: apiMessage(body)}
	}
}

type searchResponse struct {
	Tracks struct {
		Total int         `json:"total"`
		Items []trackItem `json:"items"`
	} `json:"tracks"`
}

type trackItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Version   string `json:"version"`
	Performer struct {
		Name string `json:"name"`
	} `json:"performer"`
	Album struct {
		Title string `json:"title"`
	} `json:"album"`
}

// SearchTracks runs a track search and returns at most limit ranked candidates.
func (s *Session) SearchTracks(ctx context.Context, query string, limit int) ([]core.DestinationTrack, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))

	body, status, err := s.call(ctx, "track/search", params)
	if err != nil {
		return nil, core.NewError(core.KindDestinationSearch, err)
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		if s.invalidate != nil {
			s.invalidate()
		}
		return nil, core.NewError(core.KindDestinationAuth,
			&StatusError{Endpoint: "track/search", StatusCode: status, Message: apiMessage(body)})
	default:
		return nil, core.NewError(core.KindDestinationSearch,
			&StatusError{Endpoint: "track/search", StatusCode: status, Message: apiMessage(body)})
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, core.NewError(core.KindDestinationSearch, fmt.Errorf("failed to decode search response: %w", err))
	}

	tracks := make([]core.DestinationTrack, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		if limit > 0 && len(tracks) >= limit {
			break
		}
		tracks = append(tracks, convertTrackItem(&item))
	}

	s.logger.Debug("Qobuz search completed",
		zap.String("query", query),
		zap.Int("total", resp.Tracks.Total),
		zap.Int("returned", len(tracks)))

	return tracks, nil
}

func convertTrackItem(item *trackItem) core.DestinationTrack {
	id := strconv.FormatInt(item.ID, 10)

	title := item.Title
	if item.Version != "" {
		title = fmt.Sprintf("%s (%s)", item.Title, item.Version)
	}

	return core.DestinationTrack{
		ID:     id,
		Title:  title,
		Artist: item.Performer.Name,
		Album:  item.Album.Title,
		URL:    TrackLinkBase + id,
	}
}

// call performs a GET against the JSON API and returns the body and status code.
func (s *Session) call(ctx context.Context, endpoint string, params url.Values) ([]byte, int, error) {
	reqURL := strings.TrimRight(s.apiBaseURL, "/") + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, redactURL(endpoint, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-App-Id", s.appID)
	if s.authToken != "" {
		req.Header.Set("X-User-Auth-Token", s.authToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, redactURL(endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// redactURL drops the request URL from transport errors. Login requests carry the email
// and password digest in the query string.
func redactURL(endpoint string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s %s: %w", urlErr.Op, endpoint, urlErr.Err)
	}
	return err
}

func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
