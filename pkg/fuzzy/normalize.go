// Package fuzzy normalises track titles and artist names and scores how closely two
// tracks match.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	featRegex       = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:feat\.?|ft\.?|featuring)\s+[^\)\]]*[\)\]]\s*`)
	versionRegex    = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:\d{4}\s+)?(?:remaster|remastered|deluxe|radio edit|explicit)[^\)\]]*[\)\]]\s*`)
	dashSuffixRegex = regexp.MustCompile(`(?i)\s+-\s+(?:\d{4}\s+)?(?:remaster(?:ed)?|mono|stereo|live)\b.*$`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s&]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

const (
	titleWeight  = 0.6
	artistWeight = 0.4
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) NormalizeArtist(artist string) string {
	artist = n.basicNormalize(artist)

	artist = strings.ReplaceAll(artist, " and ", " & ")
	artist = strings.TrimPrefix(artist, "the ")

	return artist
}

// NormalizeTitle strips featuring credits and edition suffixes that differ between catalogs.
func (n *Normalizer) NormalizeTitle(title string) string {
	title = featRegex.ReplaceAllString(title, " ")
	title = versionRegex.ReplaceAllString(title, " ")
	title = dashSuffixRegex.ReplaceAllString(title, "")

	return n.basicNormalize(title)
}

func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	text = strings.ToLower(text)
	text = strings.TrimSpace(text)

	return text
}

// CalculateSimilarity returns the longest common subsequence ratio of two strings in [0, 1].
func (n *Normalizer) CalculateSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	return float64(n.longestCommonSubsequence(s1, s2)) / float64(max(utf8.RuneCountInString(s1), utf8.RuneCountInString(s2)))
}

// MatchConfidence scores a destination candidate against the source track.
func (n *Normalizer) MatchConfidence(sourceArtist, sourceTitle, candidateArtist, candidateTitle string) float64 {
	titleScore := n.CalculateSimilarity(n.NormalizeTitle(sourceTitle), n.NormalizeTitle(candidateTitle))
	artistScore := n.CalculateSimilarity(n.NormalizeArtist(sourceArtist), n.NormalizeArtist(candidateArtist))

	return titleWeight*titleScore + artistWeight*artistScore
}

func (n *Normalizer) longestCommonSubsequence(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	rows, cols := len(r1), len(r2)
	dp := make([][]int, rows+1)
	for i := range dp {
		dp[i] = make([]int, cols+1)
	}

	for i := 1; i <= rows; i++ {
		for j := 1; j <= cols; j++ {
			if r1[i-1] == r2[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	return dp[rows][cols]
}
