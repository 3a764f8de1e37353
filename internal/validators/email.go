package validators

import (
	"net"
	"strings"
)

// IsEmailDomainValid checks that the address has a local part and a domain
// that actually resolves (MX record, or an A/AAAA fallback for domains that
// receive mail on the host itself).
func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	if strings.ContainsAny(domain, " \t") || !strings.Contains(domain, ".") {
		return false
	}

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
