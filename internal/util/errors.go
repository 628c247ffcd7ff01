package util

import (
	"strings"
	"unicode/utf8"
)

// ToUserError maps raw extraction errors onto short messages fit for a
// chat reply. Anything unrecognized collapses to a generic failure.
func ToUserError(message string) string {
	msg := strings.ToLower(message)

	if strings.Contains(msg, "cancelled") || strings.Contains(msg, "canceled") {
		return "Download canceled"
	}
	if strings.Contains(msg, "video unavailable") || strings.Contains(msg, "private video") || strings.Contains(msg, "this content is private") {
		return "This video is unavailable or has been removed"
	}
	if strings.Contains(msg, "live stream") || strings.Contains(msg, "is live") {
		return "Live streams can't be downloaded"
	}
	if strings.Contains(msg, "age-restricted") || strings.Contains(msg, "age restricted") || strings.Contains(msg, "confirm your age") {
		return "This video is age-restricted"
	}
	if strings.Contains(msg, "sign in to confirm") || strings.Contains(msg, "sign in to verify") {
		return "The site is blocking this request, try again later"
	}
	if strings.Contains(msg, "geo restricted") || strings.Contains(msg, "geo-restricted") || strings.Contains(msg, "not available in your country") {
		return "This video isn't available in the bot's region"
	}
	if strings.Contains(msg, "copyright") {
		return "This video was removed for copyright"
	}
	if strings.Contains(msg, "members only") || strings.Contains(msg, "members-only") {
		return "This is a members-only video"
	}
	if strings.Contains(msg, "http error 403") || strings.Contains(msg, "403 forbidden") {
		return "Access denied, the site is blocking downloads"
	}
	if strings.Contains(msg, "http error 404") || strings.Contains(msg, "404 not found") {
		return "Video not found, it may have been deleted"
	}
	if strings.Contains(msg, "unsupported url") {
		return "This website isn't supported"
	}
	if strings.Contains(msg, "no video formats") || strings.Contains(msg, "requested format not available") {
		return "No downloadable formats found"
	}
	if strings.Contains(msg, "timed out") || strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return "Download timed out, try again"
	}
	if strings.Contains(msg, "connection reset") || strings.Contains(msg, "connection refused") {
		return "Connection dropped, try again"
	}
	if strings.Contains(msg, "no such host") || strings.Contains(msg, "dns") {
		return "Couldn't reach the site, check the link"
	}
	if strings.Contains(msg, "downloaded file not found") || strings.Contains(msg, "file not found") {
		return "Download failed"
	}
	return "Download failed"
}

// Truncate caps s at maxLen bytes, cutting on a rune boundary so the
// result is always valid UTF-8.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
