package links

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vietddude/namecord/internal/metrics"
)

// Role is the position of a name in a full name.
type Role string

const (
	RoleFirst  Role = "first"
	RoleMiddle Role = "middle"
	RoleLast   Role = "last"
)

// Field is a name whose profile page exists.
type Field struct {
	Role Role   `json:"role"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// About is the result of a profile lookup.
type About struct {
	Names  []string `json:"names"`
	Fields []Field  `json:"fields"`
}

// Found reports whether any profile page exists.
func (a About) Found() bool {
	return len(a.Fields) > 0
}

// Config holds checker settings. Empty bases select the public site.
type Config struct {
	FirstNameBase string
	LastNameBase  string
	Timeout       time.Duration
}

// Checker looks up profile pages with HEAD requests.
type Checker struct {
	firstBase  string
	lastBase   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewChecker creates a checker.
func NewChecker(cfg Config) *Checker {
	if cfg.FirstNameBase == "" {
		cfg.FirstNameBase = DefaultFirstNameBase
	}
	if cfg.LastNameBase == "" {
		cfg.LastNameBase = DefaultLastNameBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Checker{
		firstBase:  withSlash(cfg.FirstNameBase),
		lastBase:   withSlash(cfg.LastNameBase),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        slog.Default().With("component", "links"),
	}
}

// Lookup checks the profile pages of names. A single name is checked as a
// first name. With several names, all but the last are checked as first
// names and the last as a surname, falling back to its first name page.
//
// Found pages are reported in order: the first as RoleFirst, the last as
// RoleLast when there are two or more, and the rest as RoleMiddle.
func (c *Checker) Lookup(ctx context.Context, names []string) (About, error) {
	about := About{Names: names}
	if len(names) == 0 {
		return about, nil
	}

	var found []Field
	for i, name := range names[:len(names)-1] {
		url := c.firstBase + Slug(name)
		ok, err := c.exists(ctx, url)
		if err != nil {
			return About{}, fmt.Errorf("check first name %d %q: %w", i+1, name, err)
		}
		if ok {
			found = append(found, Field{Name: name, URL: url})
		}
	}

	last := names[len(names)-1]
	if len(names) == 1 {
		url := c.firstBase + Slug(last)
		ok, err := c.exists(ctx, url)
		if err != nil {
			return About{}, fmt.Errorf("check first name %q: %w", last, err)
		}
		if ok {
			found = append(found, Field{Name: last, URL: url})
		}
	} else {
		url := c.lastBase + Slug(last)
		ok, err := c.exists(ctx, url)
		if err != nil {
			return About{}, fmt.Errorf("check last name %q: %w", last, err)
		}
		if !ok {
			url = c.firstBase + Slug(last)
			// a failed fallback only means the page was not found
			ok, err = c.exists(ctx, url)
			if err != nil {
				c.log.Debug("Fallback profile check failed", "name", last, "error", err)
			}
		}
		if ok {
			found = append(found, Field{Name: last, URL: url})
		}
	}

	for i := range found {
		switch {
		case i == 0:
			found[i].Role = RoleFirst
		case i == len(found)-1:
			found[i].Role = RoleLast
		default:
			found[i].Role = RoleMiddle
		}
	}
	about.Fields = found
	return about, nil
}

func (c *Checker) exists(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues("profile_check", "error").Inc()
		return false, err
	}
	resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	outcome := "missing"
	if ok {
		outcome = "found"
	}
	metrics.ProviderCallsTotal.WithLabelValues("profile_check", outcome).Inc()
	return ok, nil
}

func withSlash(base string) string {
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
