package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Page chrome
	"ui.title":           "Spotify to Qobuz",
	"ui.heading":         "Convert a Spotify track to Qobuz",
	"ui.intro":           "Paste a Spotify track link and get the matching Qobuz link.",
	"ui.label":           "Spotify link",
	"ui.placeholder":     "https://open.spotify.com/track/...",
	"ui.submit":          "Convert",
	"ui.convert_another": "Convert another track",
	"ui.result_heading":  "Qobuz link",
	"ui.error_heading":   "Conversion failed",
	"ui.matched":         "Matched %s by %s",
	"ui.confidence":      "Match confidence: %d%%",
	"ui.request_id":      "Request ID: %s",

	// Error messages, one per conversion error kind
	"error.invalid_input":       "That does not look like a Spotify track link.",
	"error.missing_credentials": "The server is missing environment variables: %s",
	"error.source_auth":         "Could not sign in to Spotify. Please try again later.",
	"error.track_not_found":     "The track was not found on Spotify.",
	"error.destination_auth":    "Could not sign in to Qobuz. Please try again later.",
	"error.destination_search":  "The Qobuz search failed. Please try again later.",
	"error.no_match":            "No track found on Qobuz.",
	"error.unknown":             "Something went wrong. Please try again.",
	"error.rate_limited":        "Too many conversions. Please wait %d seconds and try again.",
}
