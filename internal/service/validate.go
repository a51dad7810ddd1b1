package service

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/yutosuda/url-shortener/internal/apperror"
)

// maxOriginalURLLength caps stored URLs. Browsers and proxies commonly
// choke around 2000 characters; anything longer is almost certainly abuse.
const maxOriginalURLLength = 2048

// validateOriginalURL enforces the acceptance rules for URLs to shorten:
// a syntactically valid absolute http(s) URL whose host is not an internal
// address.
//
// WHY BLOCK INTERNAL HOSTS?
// The redirect endpoint is an open "GET anything" proxy from the browser's
// point of view. If we shortened http://10.0.0.5/admin, every visitor's
// browser would pivot into the operator's private network on our behalf
// (SSRF by redirect). So loopback, RFC1918, link-local and unspecified
// addresses are rejected at creation time.
//
// Hostnames are checked literally — no DNS resolution — matching how the
// block list has always behaved. A hostname that resolves to a private
// address at click time is out of scope here.
func validateOriginalURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return apperror.ValidationFailed("original_url", "original_url is required")
	}
	if len(raw) > maxOriginalURLLength {
		return apperror.ValidationFailed("original_url",
			fmt.Sprintf("URL must be %d characters or fewer", maxOriginalURLLength))
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return apperror.ValidationFailed("original_url", "URL is not parseable")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperror.ValidationFailed("original_url", "URL must start with http:// or https://")
	}
	if parsed.Host == "" || parsed.Hostname() == "" {
		return apperror.ValidationFailed("original_url", "URL must include a host")
	}

	if isBlockedHost(parsed.Hostname()) {
		return apperror.ValidationFailed("original_url", "URL host is not allowed")
	}

	return nil
}

// isBlockedHost reports whether the hostname points at localhost or a
// private/link-local/unspecified address.
//
// The net package covers almost the whole list:
//   - IsLoopback:         127.0.0.0/8, ::1
//   - IsPrivate:          10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, fc00::/7
//   - IsLinkLocalUnicast: 169.254.0.0/16, fe80::/10
//   - IsUnspecified:      0.0.0.0, ::
//
// The remaining gap is the rest of 0.0.0.0/8 ("this network"), checked by
// hand on the first IPv4 octet.
func isBlockedHost(hostname string) bool {
	if strings.EqualFold(hostname, "localhost") {
		return true
	}

	ip := net.ParseIP(hostname)
	if ip == nil {
		// A regular domain name; allowed.
		return false
	}

	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	if v4 := ip.To4(); v4 != nil && v4[0] == 0 {
		return true
	}
	return false
}
