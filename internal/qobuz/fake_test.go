package qobuz

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	testAppID        = "123456789"
	testBundlePath   = "/resources/7.1.3-b011/bundle.js"
	testLondonSecret = "london-secret-value-000000000000"
	testBerlinSecret = "berlin-secret-value-111111111111"
	testEmail        = "dj@example.com"
	testPassword     = "hunter2"
	testAuthToken    = "user-auth-token"
)

// secretParts encodes secret the way the web player bundle stores it: seed, info and
// extras concatenated, followed by 44 characters that are discarded.
func secretParts(secret string) (seed, info, extras string) {
	joined := base64.StdEncoding.EncodeToString([]byte(secret)) + strings.Repeat("x", secretSuffixLength)
	return joined[:20], joined[20:40], joined[40:]
}

func testBundle() string {
	berlinSeed, berlinInfo, berlinExtras := secretParts(testBerlinSecret)
	londonSeed, londonInfo, londonExtras := secretParts(testLondonSecret)

	var b strings.Builder
	fmt.Fprintf(&b, `var cfg={production:{api:{appId:"%s",appSecret:"0123456789abcdef0123456789abcdef"}}};`, testAppID)
	fmt.Fprintf(&b, `a.initialSeed("%s",window.utimezone.berlin);`, berlinSeed)
	fmt.Fprintf(&b, `b.initialSeed("%s",window.utimezone.london);`, londonSeed)
	fmt.Fprintf(&b, `{offset:"GMT+01:00",name:"Europe/Berlin",info:"%s",extras:"%s"},`, berlinInfo, berlinExtras)
	fmt.Fprintf(&b, `{offset:"GMT+00:00",name:"Europe/London",info:"%s",extras:"%s"}`, londonInfo, londonExtras)
	return b.String()
}

type fakeQobuz struct {
	t           *testing.T
	server      *httptest.Server
	mu          sync.Mutex
	pageHits    int
	logins      int
	searches    []string
	freeAccount bool
	expireToken bool
}

func newFakeQobuz(t *testing.T) *fakeQobuz {
	t.Helper()

	f := &fakeQobuz{t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.pageHits++
		f.mu.Unlock()

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<!DOCTYPE html><html><head>
<script src="/resources/vendor.js"></script>
<script src="%s"></script>
</head><body></body></html>`, testBundlePath)
	})
	mux.HandleFunc(testBundlePath, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testBundle()))
	})
	mux.HandleFunc("/api.json/0.2/user/login", f.handleLogin)
	mux.HandleFunc("/api.json/0.2/track/getFileUrl", f.handleFileURL)
	mux.HandleFunc("/api.json/0.2/track/search", f.handleSearch)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeQobuz) handleLogin(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.logins++
	free := f.freeAccount
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	q := r.URL.Query()
	if r.Header.Get("X-App-Id") != testAppID || q.Get("app_id") != testAppID {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","code":400,"message":"Invalid or missing app_id parameter"}`))
		return
	}
	if q.Get("email") != testEmail || q.Get("password") != md5Hex(testPassword) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":401,"message":"Invalid username/email and password combination"}`))
		return
	}

	if free {
		_, _ = w.Write([]byte(`{"user_auth_token":"` + testAuthToken + `","user":{"credential":{"parameters":null}}}`))
		return
	}
	_, _ = w.Write([]byte(`{"user_auth_token":"` + testAuthToken +
		`","user":{"credential":{"parameters":{"lossy_streaming":true}}}}`))
}

func (f *fakeQobuz) handleFileURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ts, err := strconv.ParseInt(q.Get("request_ts"), 10, 64)
	if err != nil {
		f.t.Errorf("Invalid request_ts %q", q.Get("request_ts"))
	}

	w.Header().Set("Content-Type", "application/json")
	if q.Get("request_sig") != FileURLSignature(q.Get("track_id"), secretCheckFormatID, ts, testBerlinSecret) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","code":400,"message":"Invalid Request Signature parameter (request_sig)"}`))
		return
	}
	_, _ = w.Write([]byte(`{"track_id":5966783,"url":"https://streaming.example/file"}`))
}

func (f *fakeQobuz) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	f.mu.Lock()
	f.searches = append(f.searches, query)
	expire := f.expireToken
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if expire || r.Header.Get("X-User-Auth-Token") != testAuthToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":401,"message":"User authentication is required."}`))
		return
	}

	if query == "Nobody Nothing" {
		_, _ = w.Write([]byte(`{"query":"Nobody Nothing","tracks":{"limit":1,"offset":0,"total":0,"items":[]}}`))
		return
	}

	_, _ = w.Write([]byte(`{"query":"` + query + `","tracks":{"limit":1,"offset":0,"total":42,"items":[
		{"id":12345,"title":"Yesterday","version":"Remastered 2009",
		 "performer":{"id":1,"name":"The Beatles"},"album":{"title":"Help!"}},
		{"id":67890,"title":"Yesterday","version":null,
		 "performer":{"id":2,"name":"Cover Band"},"album":{"title":"Covers"}}
	]}}`))
}

func (f *fakeQobuz) stats() (pageHits, logins int, searches []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageHits, f.logins, append([]string(nil), f.searches...)
}
