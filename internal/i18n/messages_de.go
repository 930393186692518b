package i18n

// germanMessages contains all German translations.
var germanMessages = map[string]string{
	// Page chrome
	"ui.title":           "Spotify zu Qobuz",
	"ui.heading":         "Spotify-Titel zu Qobuz umwandeln",
	"ui.intro":           "Füge einen Spotify-Titellink ein und erhalte den passenden Qobuz-Link.",
	"ui.label":           "Spotify-Link",
	"ui.placeholder":     "https://open.spotify.com/track/...",
	"ui.submit":          "Umwandeln",
	"ui.convert_another": "Weiteren Titel umwandeln",
	"ui.result_heading":  "Qobuz-Link",
	"ui.error_heading":   "Umwandlung fehlgeschlagen",
	"ui.matched":         "Gefunden: %s von %s",
	"ui.confidence":      "Übereinstimmung: %d%%",
	"ui.request_id":      "Anfrage-ID: %s",

	// Fehlermeldungen
	"error.invalid_input":       "Das sieht nicht nach einem Spotify-Titellink aus.",
	"error.missing_credentials": "Dem Server fehlen Umgebungsvariablen: %s",
	"error.source_auth":         "Anmeldung bei Spotify fehlgeschlagen. Bitte später erneut versuchen.",
	"error.track_not_found":     "Der Titel wurde auf Spotify nicht gefunden.",
	"error.destination_auth":    "Anmeldung bei Qobuz fehlgeschlagen. Bitte später erneut versuchen.",
	"error.destination_search":  "Die Qobuz-Suche ist fehlgeschlagen. Bitte später erneut versuchen.",
	"error.no_match":            "Kein Titel auf Qobuz gefunden.",
	"error.unknown":             "Etwas ist schiefgelaufen. Bitte erneut versuchen.",
	"error.rate_limited":        "Zu viele Umwandlungen. Bitte %d Sekunden warten und erneut versuchen.",
}
