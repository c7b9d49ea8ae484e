package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// defaultCertTTL applies when the certificate response has no usable max-age.
	defaultCertTTL = 5 * time.Minute
	// defaultCertFetchTimeout bounds a refresh when the client sets no timeout.
	defaultCertFetchTimeout = 10 * time.Second
)

// certSource downloads the provider's x509 signing certificates and caches
// their public keys until the response's Cache-Control max-age elapses.
type certSource struct {
	url    string
	client *http.Client
	now    func() time.Time

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time

	group singleflight.Group
}

func newCertSource(url string, client *http.Client) *certSource {
	if client == nil {
		client = &http.Client{Timeout: defaultCertFetchTimeout}
	}
	return &certSource{
		url:    url,
		client: client,
		now:    time.Now,
	}
}

// key returns the public key for kid. A kid absent from a fresh certificate
// set yields ErrInvalidToken; download failures wrap ErrCertificateFetch.
func (c *certSource) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	keys, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	pub, ok := keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: unknown key id %q", ErrInvalidToken, kid)
	}
	return pub, nil
}

// cached returns the key set if it has not expired.
func (c *certSource) cached() (map[string]*rsa.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.keys == nil || !c.now().Before(c.expires) {
		return nil, false
	}
	return c.keys, true
}

// current returns a valid key set, refreshing it at most once across
// concurrent callers. The shared refresh outlives any one caller's context.
func (c *certSource) current(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	if keys, ok := c.cached(); ok {
		return keys, nil
	}

	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		// Another caller may have refreshed between the check and Do.
		if keys, ok := c.cached(); ok {
			return keys, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout())
		defer cancel()
		keys, ttl, err := c.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.keys = keys
		c.expires = c.now().Add(ttl)
		c.mu.Unlock()
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]*rsa.PublicKey), nil
}

func (c *certSource) fetchTimeout() time.Duration {
	if c.client.Timeout > 0 {
		return c.client.Timeout
	}
	return defaultCertFetchTimeout
}

func (c *certSource) fetch(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCertificateFetch, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCertificateFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: unexpected status %d", ErrCertificateFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCertificateFetch, err)
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return nil, 0, fmt.Errorf("%w: decoding certificates: %v", ErrCertificateFetch, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		pub, err := parseRSACertificate(certPEM)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: certificate %q: %v", ErrCertificateFetch, kid, err)
		}
		keys[kid] = pub
	}
	if len(keys) == 0 {
		return nil, 0, fmt.Errorf("%w: empty certificate set", ErrCertificateFetch)
	}

	return keys, maxAge(resp.Header.Get("Cache-Control")), nil
}

func parseRSACertificate(certPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate key is %T, not RSA", cert.PublicKey)
	}
	return pub, nil
}

// maxAge extracts max-age from a Cache-Control header value.
func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(directive), "=")
		if !found || !strings.EqualFold(name, "max-age") {
			continue
		}
		seconds, err := strconv.Atoi(strings.Trim(value, `"`))
		if err != nil || seconds <= 0 {
			return defaultCertTTL
		}
		return time.Duration(seconds) * time.Second
	}
	return defaultCertTTL
}
