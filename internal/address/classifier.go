package address

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// MXResolver is the subset of *net.Resolver used for MX inspection.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// DomainClassifier flags domains from a static list (including their
// subdomains) and, when MX checking is on, domains that cannot receive mail.
type DomainClassifier struct {
	domains  map[string]struct{}
	resolver MXResolver
	timeout  time.Duration
}

// NewDomainClassifier builds a classifier. A nil resolver disables the MX check.
func NewDomainClassifier(shadyDomains []string, resolver MXResolver, timeout time.Duration) *DomainClassifier {
	m := make(map[string]struct{}, len(shadyDomains))
	for _, d := range shadyDomains {
		d = strings.ToLower(strings.Trim(strings.TrimSpace(d), "."))
		if d != "" {
			m[d] = struct{}{}
		}
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &DomainClassifier{domains: m, resolver: resolver, timeout: timeout}
}

func (c *DomainClassifier) IsShadyProvider(ctx context.Context, domain string) (bool, error) {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	if domain == "" {
		return true, nil
	}

	for d := domain; ; {
		if _, ok := c.domains[d]; ok {
			return true, nil
		}
		i := strings.IndexByte(d, '.')
		if i < 0 {
			break
		}
		d = d[i+1:]
	}

	if c.resolver == nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	mx, err := c.resolver.LookupMX(ctx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return true, nil
		}
		return false, err
	}

	// RFC 7505 null MX: "." with no other records
	if len(mx) == 0 || (len(mx) == 1 && mx[0].Host == ".") {
		return true, nil
	}
	return false, nil
}
