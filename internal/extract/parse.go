package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var percentRe = regexp.MustCompile(`([\d.]+)%`)
var speedRe = regexp.MustCompile(`at\s+([\d.]+\s*\w+/s)`)
var etaRe = regexp.MustCompile(`ETA\s+(\S+)`)
var ytdlpErrorRe = regexp.MustCompile(`(?i)ERROR[:\s]+(.+?)(?:\n|$)`)

type Progress struct {
	Percent float64
	Speed   string
	ETA     string
}

func ParseProgress(text string) Progress {
	var p Progress
	if m := percentRe.FindStringSubmatch(text); len(m) > 1 {
		p.Percent, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := speedRe.FindStringSubmatch(text); len(m) > 1 {
		p.Speed = m[1]
	}
	if m := etaRe.FindStringSubmatch(text); len(m) > 1 {
		p.ETA = m[1]
	}
	return p
}

// ExtractError pulls the first ERROR line out of yt-dlp's stderr.
func ExtractError(stderr string) string {
	if m := ytdlpErrorRe.FindStringSubmatch(stderr); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return "Download failed"
}

// ParseMetadata reads title and extractor name from the JSON info dict
// yt-dlp prints after the download. A broken or missing line yields
// empty fields rather than an error; the file on disk is what matters.
func ParseMetadata(line string) (title, platform string) {
	if line == "" {
		return "", ""
	}
	var meta struct {
		Title        string `json:"title"`
		ExtractorKey string `json:"extractor_key"`
	}
	if err := json.Unmarshal([]byte(line), &meta); err != nil {
		return "", ""
	}
	return meta.Title, meta.ExtractorKey
}
