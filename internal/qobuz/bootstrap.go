package qobuz

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// loginPath is the web player page that references the application bundle.
	loginPath = "/login"
	// secretSuffixLength is the number of trailing characters dropped before decoding a secret.
	secretSuffixLength = 44
	// maxBundleSize limits how much of bundle.js is read.
	maxBundleSize = 16 << 20
)

var (
	bundlePathRegex = regexp.MustCompile(`^/resources/\d+\.\d+\.\d+-[a-z]\d{3}/bundle\.js$`)
	appIDRegex      = regexp.MustCompile(`production:\{api:\{appId:"(\d{9})",appSecret:"(\w{32})`)
	seedRegex       = regexp.MustCompile(`[a-z]\.initialSeed\("([\w=]+)",window\.utimezone\.([a-z]+)\)`)
)

// AppCredentials are the application identifiers scraped from the web player bundle.
type AppCredentials struct {
	AppID   string
	Secrets []string
}

// Bootstrapper retrieves the dynamic application id and secrets from the Qobuz web player.
type Bootstrapper struct {
	baseURL    string
	httpClient *http.Client
}

func NewBootstrapper(baseURL string, httpClient *http.Client) *Bootstrapper {
	return &Bootstrapper{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Fetch downloads the login page, locates bundle.js and extracts the app id and secrets.
func (b *Bootstrapper) Fetch(ctx context.Context) (*AppCredentials, error) {
	bundlePath, err := b.findBundlePath(ctx)
	if err != nil {
		return nil, err
	}

	bundle, err := b.get(ctx, b.baseURL+bundlePath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bundle: %w", err)
	}

	return ParseBundle(bundle)
}

func (b *Bootstrapper) findBundlePath(ctx context.Context) (string, error) {
	page, err := b.get(ctx, b.baseURL+loginPath)
	if err != nil {
		return "", fmt.Errorf("failed to fetch login page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse login page: %w", err)
	}

	var bundlePath string
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if bundlePathRegex.MatchString(src) {
			bundlePath = src
			return false
		}
		return true
	})

	if bundlePath == "" {
		return "", errors.New("bundle.js not referenced by login page")
	}
	return bundlePath, nil
}

func (b *Bootstrapper) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Endpoint: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBundleSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// ParseBundle extracts the app id and the ordered list of candidate secrets from bundle.js.
func ParseBundle(bundle string) (*AppCredentials, error) {
	appMatch := appIDRegex.FindStringSubmatch(bundle)
	if appMatch == nil {
		return nil, errors.New("app id not found in bundle")
	}

	seeds := seedRegex.FindAllStringSubmatch(bundle, -1)
	if len(seeds) == 0 {
		return nil, errors.New("secret seeds not found in bundle")
	}

	var timezones []string
	seedByZone := make(map[string]string, len(seeds))
	for _, m := range seeds {
		seed, zone := m[1], m[2]
		if _, seen := seedByZone[zone]; !seen {
			timezones = append(timezones, zone)
		}
		seedByZone[zone] = seed
	}

	// The second timezone's secret is the one the player actually uses; try it first.
	if len(timezones) > 1 {
		timezones[0], timezones[1] = timezones[1], timezones[0]
	}

	infoRegex, err := infoExtrasRegex(timezones)
	if err != nil {
		return nil, err
	}

	// A zone may appear in several timezone entries; their parts are concatenated in order.
	parts := make(map[string]string, len(timezones))
	for _, m := range infoRegex.FindAllStringSubmatch(bundle, -1) {
		zone := strings.ToLower(m[1])
		parts[zone] += m[2] + m[3]
	}

	creds := &AppCredentials{AppID: appMatch[1]}
	for _, zone := range timezones {
		secret, ok := decodeSecret(seedByZone[zone] + parts[zone])
		if ok {
			creds.Secrets = append(creds.Secrets, secret)
		}
	}

	if len(creds.Secrets) == 0 {
		return nil, errors.New("no decodable secrets in bundle")
	}
	return creds, nil
}

func infoExtrasRegex(timezones []string) (*regexp.Regexp, error) {
	names := make([]string, 0, len(timezones))
	for _, zone := range timezones {
		names = append(names, regexp.QuoteMeta(capitalize(zone)))
	}
	pattern := fmt.Sprintf(`name:"\w+/(%s)",info:"([\w=]+)",extras:"([\w=]+)"`, strings.Join(names, "|"))
	return regexp.Compile(pattern)
}

func decodeSecret(joined string) (string, bool) {
	if len(joined) <= secretSuffixLength {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(joined[:len(joined)-secretSuffixLength])
	if err != nil || len(decoded) == 0 {
		return "", false
	}
	return string(decoded), true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
