package crawler

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/alvmarrod/news-weaver/internal/config"
)

// Classifier decides whether a discovered URL belongs to the target site and
// whether the crawler should fetch it
type Classifier struct {
	domain  string
	blocked map[string]struct{}
	strict  bool
}

// NewClassifier builds a classifier for the target domain.
// blockedExtensions are matched against the end of the URL path without the dot.
// With strict set, domain membership compares the host's registrable domain
// instead of searching the URL text for the domain string.
func NewClassifier(domain string, blockedExtensions []string, strict bool) *Classifier {
	blocked := make(map[string]struct{}, len(blockedExtensions))
	for _, ext := range blockedExtensions {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			blocked[ext] = struct{}{}
		}
	}
	return &Classifier{
		domain:  strings.ToLower(strings.TrimSpace(domain)),
		blocked: blocked,
		strict:  strict,
	}
}

// Classify returns whether the candidate may be fetched and whether it is within the target domain
func Classify(candidateURL, targetDomain string) (eligible, withinDomain bool) {
	return NewClassifier(targetDomain, config.DefaultBlockedExtensions, false).Classify(candidateURL)
}

// Classify returns the verdict for a candidate URL. It has no side effects.
func (c *Classifier) Classify(candidateURL string) (eligible, withinDomain bool) {
	withinDomain = c.withinDomain(candidateURL)
	if !withinDomain {
		return false, false
	}
	return !c.IsBlockedExtension(candidateURL), true
}

// IsBlockedExtension checks whether the URL path ends in a non-document extension
func (c *Classifier) IsBlockedExtension(candidateURL string) bool {
	target := strings.ToLower(candidateURL)
	if parsed, err := url.Parse(candidateURL); err == nil {
		target = strings.ToLower(parsed.Path)
	}

	ext := strings.TrimPrefix(path.Ext(target), ".")
	if ext == "" {
		return false
	}
	_, blocked := c.blocked[ext]
	return blocked
}

func (c *Classifier) withinDomain(candidateURL string) bool {
	if c.domain == "" {
		return false
	}
	if !c.strict {
		return strings.Contains(strings.ToLower(candidateURL), c.domain)
	}

	host, err := ExtractDomain(candidateURL)
	if err != nil || host == "" {
		return false
	}
	if host == c.domain {
		return true
	}
	return RegistrableDomain(host) == c.domain
}

// ExtractDomain extracts the lowercase hostname from a URL string
func ExtractDomain(urlStr string) (string, error) {
	// Handle protocol-relative URLs
	if strings.HasPrefix(urlStr, "//") {
		urlStr = "https:" + urlStr
	}

	// Relative URLs carry no host
	if !strings.Contains(urlStr, "://") {
		return "", nil
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	return strings.ToLower(parsed.Hostname()), nil
}

// RegistrableDomain returns the eTLD+1 of a host, e.g. www.nytimes.com -> nytimes.com.
// Hosts without a public suffix (IPs, localhost) are returned unchanged.
func RegistrableDomain(host string) string {
	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return root
}
