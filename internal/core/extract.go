package core

import (
	"regexp"
	"strings"
)

var trackIDRegex = regexp.MustCompile(`track/([A-Za-z0-9]+)`)

// ExtractTrackID returns the run of alphanumerics following the first "track/" segment.
// The host and scheme are not checked.
func ExtractTrackID(rawURL string) (TrackID, error) {
	matches := trackIDRegex.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return "", &ConversionError{Kind: KindInvalidInput}
	}
	return TrackID(matches[1]), nil
}

// NormalizeLink rewrites the Qobuz player link into its public web form by replacing
// every "play" with "open". Links are built from numeric ids, so the token only occurs
// in the host.
func NormalizeLink(link string) string {
	return strings.ReplaceAll(link, "play", "open")
}

// SearchQuery builds the destination search text.
func SearchQuery(track *SourceTrack) string {
	return track.Artist + " " + track.Title
}
