package contact

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"unicode/utf8"

	"github.com/drstein77/batterycatalog/internal/models"
)

// maxIPLength is the width of the stored ip_address column.
const maxIPLength = 45

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#039;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes the characters that are special in HTML, quotes included.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// SanitizeEmail drops every character that cannot appear in an e-mail address.
func SanitizeEmail(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("!#$%&'*+-=?^_`{|}~@.[]", r):
			return r
		}
		return -1
	}, s)
}

func trimRequest(req models.ContactRequest) models.ContactRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	req.RecaptchaToken = strings.TrimSpace(req.RecaptchaToken)
	return req
}

func sanitizeRequest(req models.ContactRequest) models.ContactRequest {
	req.Name = EscapeHTML(req.Name)
	req.Email = SanitizeEmail(req.Email)
	req.Phone = EscapeHTML(req.Phone)
	req.Subject = EscapeHTML(req.Subject)
	req.Message = EscapeHTML(req.Message)
	return req
}

// Client identifies the sender of a submission.
type Client struct {
	RemoteAddr   string
	ForwardedFor string
	ClientIP     string
}

// ClientFromRequest reads the connection address and the proxy headers of r.
func ClientFromRequest(r *http.Request) Client {
	return Client{
		RemoteAddr:   r.RemoteAddr,
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		ClientIP:     r.Header.Get("Client-IP"),
	}
}

// RemoteIP is the connection address without its port.
func (c Client) RemoteIP() string {
	host, _, err := net.SplitHostPort(c.RemoteAddr)
	if err != nil {
		return c.RemoteAddr
	}
	return host
}

// IP picks the first X-Forwarded-For entry, then Client-IP, then the remote address.
func (c Client) IP() string {
	ip := c.RemoteIP()
	if xff := strings.TrimSpace(c.ForwardedFor); xff != "" {
		ip = strings.TrimSpace(strings.Split(xff, ",")[0])
	} else if cip := strings.TrimSpace(c.ClientIP); cip != "" {
		ip = cip
	}
	return truncate(ip, maxIPLength)
}

// RateKey is the address submissions are counted under. Proxy headers are
// honoured only when the connection comes from one of the trusted proxies.
func (c Client) RateKey(trusted []netip.Prefix) string {
	remote := c.RemoteIP()
	if addr, err := netip.ParseAddr(remote); err == nil {
		addr = addr.Unmap()
		for _, p := range trusted {
			if p.Contains(addr) {
				return c.IP()
			}
		}
	}
	return truncate(remote, maxIPLength)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
