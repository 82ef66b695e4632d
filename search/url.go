// Package search turns a profile into a live navigation: it builds the job
// search URL and drives a Host to show it.
package search

import (
	"net/url"
	"strings"
)

const (
	DefaultBaseURL = "https://www.upwork.com/nx/search/jobs/"
	DefaultDomain  = "upwork.com"
)

// Builder produces search URLs against a fixed base.
type Builder struct {
	BaseURL string
}

// URL returns the base URL with the fixed filters and q set to keywords.
func (b Builder) URL(keywords string) string {
	base := b.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	params := url.Values{
		"client_hires":     {"1-9,10-"},
		"payment_verified": {"1"},
		"q":                {keywords},
		"sort":             {"recency"},
	}
	return base + "?" + params.Encode()
}

// BuildURL builds a search URL against DefaultBaseURL.
func BuildURL(keywords string) string {
	return Builder{}.URL(keywords)
}

// OnDomain reports whether rawURL's host is domain or one of its subdomains.
func OnDomain(rawURL, domain string) bool {
	if rawURL == "" || domain == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}
