package http

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"songbridge/internal/core"
	"songbridge/internal/i18n"
)

const (
	// formField is the query parameter carrying the Spotify link.
	formField = "spotify"

	surfaceHTML = "html"
	surfaceAPI  = "api"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// pageData is rendered by both the form and the result page.
type pageData struct {
	Lang       string
	T          func(key string, args ...interface{}) string
	FormField  string
	Input      string
	Link       string
	Title      string
	Artist     string
	Confidence int
	RequestID  string
	Error      string
}

type convertResponse struct {
	RequestID  string         `json:"request_id"`
	Link       string         `json:"link,omitempty"`
	Source     *trackResponse `json:"source,omitempty"`
	Match      *trackResponse `json:"match,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Error      string         `json:"error,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	Missing    []string       `json:"missing,omitempty"`
}

type trackResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	URL    string `json:"url,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	localizer := s.localizer(r)
	s.render(w, http.StatusOK, "index.html", s.newPageData(localizer))
}

// handleConvert renders every outcome with 200 OK, rate limiting included.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	localizer := s.localizer(r)
	data := s.newPageData(localizer)
	data.Input = r.URL.Query().Get(formField)

	if retryAfter, ok := s.admit(w, r, surfaceHTML); !ok {
		data.Error = localizer.T("error.rate_limited", retryAfter)
		s.render(w, http.StatusOK, "result.html", data)
		return
	}

	result, err := s.convert(r, surfaceHTML, data.Input)
	if err != nil {
		var convErr *core.ConversionError
		if errors.As(err, &convErr) {
			data.Error = localizer.ErrorMessage(convErr.Kind.String(), convErr.Missing)
			data.RequestID = convErr.RequestID
		} else {
			data.Error = localizer.ErrorMessage(core.KindUnknown.String(), nil)
		}
		s.render(w, http.StatusOK, "result.html", data)
		return
	}

	data.Link = result.Link
	data.Title = result.Source.Title
	data.Artist = result.Source.Artist
	data.Confidence = int(math.Round(result.Confidence * 100))
	data.RequestID = result.RequestID
	s.render(w, http.StatusOK, "result.html", data)
}

// handleAPIConvert is the JSON variant; its status code reflects the error kind.
func (s *Server) handleAPIConvert(w http.ResponseWriter, r *http.Request) {
	localizer := s.localizer(r)

	if retryAfter, ok := s.admit(w, r, surfaceAPI); !ok {
		s.writeJSON(w, http.StatusTooManyRequests, convertResponse{
			Error: localizer.T("error.rate_limited", retryAfter),
			Kind:  "rate_limited",
		})
		return
	}

	result, err := s.convert(r, surfaceAPI, r.URL.Query().Get(formField))
	if err != nil {
		resp := convertResponse{
			Error: (&core.ConversionError{}).Message(),
			Kind:  core.KindOf(err).String(),
		}
		var convErr *core.ConversionError
		if errors.As(err, &convErr) {
			resp.Error = convErr.Message()
			resp.RequestID = convErr.RequestID
			resp.Missing = convErr.Missing
		}
		s.writeJSON(w, statusForKind(core.KindOf(err)), resp)
		return
	}

	confidence := result.Confidence
	s.writeJSON(w, http.StatusOK, convertResponse{
		RequestID: result.RequestID,
		Link:      result.Link,
		Source: &trackResponse{
			ID:     string(result.Source.ID),
			Title:  result.Source.Title,
			Artist: result.Source.Artist,
			Album:  result.Source.Album,
			URL:    result.Source.URL,
		},
		Match: &trackResponse{
			ID:     result.Match.ID,
			Title:  result.Match.Title,
			Artist: result.Match.Artist,
			Album:  result.Match.Album,
			URL:    result.Match.URL,
		},
		Confidence: &confidence,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "songbridge"})
}

// handleReady reports 503 while conversion credentials are missing.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	missing := s.converter.MissingCredentials()

	status, code := "ready", http.StatusOK
	if len(missing) > 0 {
		status, code = "missing_credentials", http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, map[string]interface{}{
		"status":  status,
		"service": "songbridge",
		"missing": missing,
		"flood":   s.floodgate.GetStats(),
	})
}

func (s *Server) convert(r *http.Request, surface, input string) (*core.Result, error) {
	start := time.Now()
	result, err := s.converter.Convert(r.Context(), input)
	duration := time.Since(start)

	if err != nil {
		s.metrics.RecordConversion(surface, core.KindOf(err).String(), duration)
		return nil, err
	}

	s.metrics.RecordConversion(surface, outcomeSuccess, duration)
	s.metrics.RecordConfidence(result.Confidence)
	return result, nil
}

// admit applies the flood gate and returns the retry delay in whole seconds when blocked.
func (s *Server) admit(w http.ResponseWriter, r *http.Request, surface string) (int, bool) {
	client := clientAddress(r)
	decision := s.floodgate.Allow(client)
	if decision.Allowed {
		return 0, true
	}

	retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	s.metrics.RecordRateLimited(surface)
	s.logger.Warn("Conversion request rate limited",
		zap.String("client", client),
		zap.String("surface", surface),
		zap.Int("retry_after_secs", retryAfter))

	return retryAfter, false
}

func (s *Server) newPageData(localizer *i18n.Localizer) pageData {
	return pageData{
		Lang:      localizer.Language(),
		T:         localizer.T,
		FormField: formField,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Failed to render template", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func statusForKind(kind core.ErrorKind) int {
	switch kind {
	case core.KindInvalidInput:
		return http.StatusBadRequest
	case core.KindTrackNotFound, core.KindNoMatch:
		return http.StatusNotFound
	case core.KindSourceAuth, core.KindDestinationAuth, core.KindDestinationSearch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
