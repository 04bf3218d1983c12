// Package policy holds the externalized policy data for the contact pipeline:
// the allow-list of trusted source-domain suffixes and the fixed search query
// templates. Policy is data, not architecture — it ships with defaults and can
// be overridden from a YAML file.
package policy

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// QueryCount is the fixed number of search queries issued per country.
const QueryCount = 3

// Policy configures source trust and query templating.
type Policy struct {
	// TrustedSuffixes lists domain suffixes accepted for fresh-fetched
	// contacts, e.g. ".gov" or "who.int". Matching is against the URL host,
	// on label boundaries.
	TrustedSuffixes []string `yaml:"trusted_suffixes"`

	// QueryTemplates are the pre-templated search queries. Placeholders
	// {country} and {year} are substituted at search time. Exactly QueryCount
	// entries are required.
	QueryTemplates []string `yaml:"query_templates"`
}

// Default returns the built-in policy used when no policy file is configured.
func Default() *Policy {
	return &Policy{
		TrustedSuffixes: []string{
			".gov",
			".gov.uk",
			".gov.in",
			".gov.au",
			".gc.ca",
			".org",
			".who.int",
			".europa.eu",
			".nhs.uk",
			".un.org",
		},
		QueryTemplates: []string{
			"{country} emergency number national emergency police ambulance {year}",
			"{country} mental health crisis hotline suicide prevention {year} official",
			"{country} crisis helpline phone number website {year}",
		},
	}
}

// Load reads a policy from a YAML file. The file may override either list;
// omitted fields keep their defaults.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "policy: read %s", path)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, eris.Wrapf(err, "policy: parse %s", path)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks structural requirements on the policy.
func (p *Policy) Validate() error {
	if len(p.TrustedSuffixes) == 0 {
		return eris.New("policy: trusted_suffixes must not be empty")
	}
	if len(p.QueryTemplates) != QueryCount {
		return eris.Errorf("policy: expected %d query templates, got %d", QueryCount, len(p.QueryTemplates))
	}
	return nil
}

// Queries renders the query templates for a country and year. The same inputs
// always produce the same queries.
func (p *Policy) Queries(country string, year int) []string {
	r := strings.NewReplacer(
		"{country}", country,
		"{year}", strconv.Itoa(year),
	)
	out := make([]string, len(p.QueryTemplates))
	for i, tmpl := range p.QueryTemplates {
		out[i] = r.Replace(tmpl)
	}
	return out
}

// Trusted reports whether sourceURL's host matches one of the trusted
// suffixes. URLs without a parseable host are never trusted.
func (p *Policy) Trusted(sourceURL string) bool {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, suffix := range p.TrustedSuffixes {
		s := strings.ToLower(strings.TrimSpace(suffix))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		// Accept both "example.gov" (host equals suffix minus the dot) and
		// any subdomain "foo.example.gov".
		if host == strings.TrimPrefix(s, ".") || strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}
