package util

import (
	"net"
	"net/url"
	"strings"

	"github.com/telefetch/telefetch/internal/config"
	"github.com/telefetch/telefetch/internal/queue"
)

type URLValidation struct {
	Valid bool
	Error string
}

func ValidateURL(rawURL string) URLValidation {
	if rawURL == "" {
		return URLValidation{false, "URL is required"}
	}
	if len(rawURL) > config.MaxURLLength {
		return URLValidation{false, "URL is too long"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return URLValidation{false, "Invalid URL format"}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return URLValidation{false, "Only HTTP/HTTPS URLs are allowed"}
	}

	hostname := strings.ToLower(parsed.Hostname())
	if isPrivateHost(hostname) {
		return URLValidation{false, "Private/local URLs are not allowed"}
	}

	return URLValidation{true, ""}
}

// DetectPlatform maps a URL onto a platform label and media kind. A
// false return means the host table doesn't cover it and admission
// should reject it.
func DetectPlatform(rawURL string) (label string, kind queue.Kind, ok bool) {
	lower := strings.ToLower(rawURL)
	for _, host := range config.AudioHosts {
		if strings.Contains(lower, host) {
			return platformLabel(host), queue.KindAudio, true
		}
	}
	for _, host := range config.VideoHosts {
		if strings.Contains(lower, host) {
			return platformLabel(host), queue.KindVideo, true
		}
	}
	return "", "", false
}

func platformLabel(host string) string {
	name := host
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	switch name {
	case "youtu", "youtube":
		return "YouTube"
	case "x", "twitter":
		return "Twitter"
	case "tiktok":
		return "TikTok"
	case "instagram":
		return "Instagram"
	case "soundcloud":
		return "SoundCloud"
	case "spotify":
		return "Spotify"
	case "bandcamp":
		return "Bandcamp"
	}
	if name == "" {
		return "Unknown"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

var privateNets []*net.IPNet

func init() {
	cidrs := []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"0.0.0.0/8",
		"169.254.0.0/16",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, _ := net.ParseCIDR(cidr)
		privateNets = append(privateNets, network)
	}
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func isPrivateHost(hostname string) bool {
	if hostname == "" || hostname == "localhost" {
		return true
	}

	ip := net.ParseIP(hostname)
	if ip == nil {
		ip = net.ParseIP(strings.Trim(hostname, "[]"))
	}

	if ip != nil {
		return isPrivateIP(ip)
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return true
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return true
		}
	}
	return false
}
