package qobuz

import (
	"crypto/md5" //nolint:gosec // Qobuz request signatures and password digests are MD5 by protocol
	"encoding/hex"
	"regexp"
	"strconv"
)

var md5HexRegex = regexp.MustCompile(`^[0-9a-f]{32}$`)

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// HashPassword returns the MD5 digest the login endpoint expects. Values that already
// look like a digest are passed through.
func HashPassword(password string) string {
	if md5HexRegex.MatchString(password) {
		return password
	}
	return md5Hex(password)
}

// FileURLSignature signs a track/getFileUrl request.
func FileURLSignature(trackID string, formatID int, timestamp int64, secret string) string {
	return md5Hex("trackgetFileUrlformat_id" + strconv.Itoa(formatID) +
		"intentstreamtrack_id" + trackID + strconv.FormatInt(timestamp, 10) + secret)
}
