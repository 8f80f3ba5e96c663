package process

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benjaminestes/robots"
)

// Gate enforces a site's published crawl policy. It is loaded once at
// crawl start and never re-fetched. A load failure leaves the gate in
// its fail-open state: every URL allowed, fallback delay.
type Gate struct {
	rules *robots.Robots // nil when the policy failed to load
	agent string
	delay time.Duration
}

// LoadGate fetches and parses robots.txt for the site hosting seedURL.
// Any failure (network, status, parse) is a warning, not an error: the
// crawl must never abort because a policy document is missing.
func LoadGate(seedURL, userAgent string, client *http.Client, fallback time.Duration) *Gate {
	g := &Gate{agent: userAgent, delay: fallback}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("panic in robots.txt parsing, assuming allowed", slog.String("url", seedURL), slog.Any("panic", r))
		}
	}()

	robotsURL, err := robots.Locate(seedURL)
	if err != nil {
		slog.Warn("could not locate robots.txt", slog.String("url", seedURL), slog.Any("err", err))
		return g
	}

	req, err := http.NewRequest(http.MethodGet, robotsURL, nil)
	if err != nil {
		slog.Warn("could not build robots.txt request", slog.String("url", robotsURL), slog.Any("err", err))
		return g
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("failed to fetch robots.txt", slog.String("url", robotsURL), slog.Any("err", err))
		return g
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("failed to read robots.txt", slog.String("url", robotsURL), slog.Any("err", err))
		return g
	}

	rules, err := robots.From(resp.StatusCode, bytes.NewReader(body))
	if err != nil {
		slog.Warn("failed to parse robots.txt", slog.String("url", robotsURL), slog.Any("err", err))
		return g
	}

	g.rules = rules
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		g.delay = resolveDelay(body, userAgent, fallback)
	}

	slog.Info("loaded robots.txt",
		slog.String("url", robotsURL),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("delay", g.delay),
	)
	return g
}

// Allowed reports whether the policy permits fetching url.
func (g *Gate) Allowed(url string) bool {
	if g.rules == nil {
		return true
	}
	return g.rules.Test(g.agent, url)
}

// Delay returns the minimum wait between requests to the site.
func (g *Gate) Delay() time.Duration {
	return g.delay
}

// delayDirectives holds the politeness directives of one agent group.
// The exclusion library implements Google's spec, which omits these,
// so they are scanned out of the raw document separately.
type delayDirectives struct {
	crawlDelay  *float64 // seconds
	requestRate *float64 // seconds per request, derived from n/m
}

func (d delayDirectives) empty() bool {
	return d.crawlDelay == nil && d.requestRate == nil
}

// resolveDelay extracts the politeness delay for userAgent. An explicit
// Crawl-delay wins over a Request-rate, which wins over the fallback.
// A group addressed to the agent wins over the wildcard group.
func resolveDelay(body []byte, userAgent string, fallback time.Duration) time.Duration {
	matched, wildcard := scanDelayDirectives(body, userAgent)

	picked := wildcard
	if !matched.empty() {
		picked = matched
	}

	if picked.crawlDelay != nil {
		return time.Duration(*picked.crawlDelay * float64(time.Second))
	}
	if picked.requestRate != nil {
		return time.Duration(*picked.requestRate * float64(time.Second))
	}
	return fallback
}

func scanDelayDirectives(body []byte, userAgent string) (matched, wildcard delayDirectives) {
	// Group names match against the product token, per the
	// conventional robots.txt interpretation.
	token := strings.ToLower(userAgent)
	if i := strings.Index(token, "/"); i >= 0 {
		token = token[:i]
	}

	var agents []string
	sawDirective := false

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)

		switch key {
		case "user-agent":
			// A user-agent line after directives starts a new group.
			if sawDirective {
				agents = agents[:0]
				sawDirective = false
			}
			agents = append(agents, strings.ToLower(val))
		case "crawl-delay":
			sawDirective = true
			if secs, err := strconv.ParseFloat(val, 64); err == nil && secs >= 0 {
				assignDirective(&matched, &wildcard, agents, token, func(d *delayDirectives) {
					if d.crawlDelay == nil {
						d.crawlDelay = &secs
					}
				})
			}
		case "request-rate":
			sawDirective = true
			if secsPerReq, ok := parseRequestRate(val); ok {
				assignDirective(&matched, &wildcard, agents, token, func(d *delayDirectives) {
					if d.requestRate == nil {
						d.requestRate = &secsPerReq
					}
				})
			}
		default:
			sawDirective = true
		}
	}

	return matched, wildcard
}

func assignDirective(matched, wildcard *delayDirectives, agents []string, token string, set func(*delayDirectives)) {
	for _, a := range agents {
		switch {
		case a == "*":
			set(wildcard)
		case a != "" && strings.Contains(token, a):
			set(matched)
		}
	}
}

// parseRequestRate parses "n/m" (n requests per m seconds) into
// seconds per request.
func parseRequestRate(val string) (float64, bool) {
	if i := strings.IndexByte(val, ' '); i >= 0 {
		val = val[:i] // trailing time-window qualifiers are ignored
	}
	reqStr, secStr, ok := strings.Cut(val, "/")
	if !ok {
		return 0, false
	}
	reqs, err := strconv.ParseFloat(strings.TrimSpace(reqStr), 64)
	if err != nil || reqs <= 0 {
		return 0, false
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(secStr), 64)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return secs / reqs, true
}
