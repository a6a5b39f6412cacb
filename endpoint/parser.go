package endpoint

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Port range accepted for explicit host:port declarations.
const (
	MinPort = 1
	MaxPort = 65535
)

// WarningCode classifies a parse warning.
type WarningCode string

const (
	// WarnUnrecognized indicates a line that matched no recognized endpoint
	// form. The line contributes nothing to the resulting Set.
	WarnUnrecognized WarningCode = "unrecognized_line"

	// WarnInvalidPort indicates a line whose trailing :port text did not
	// parse as a port in range. The host portion is still recorded.
	WarnInvalidPort WarningCode = "invalid_port"
)

// Warning describes a non-fatal problem with one input line. Warnings are
// attached to an otherwise successful parse; the display layer decides
// whether to surface them.
type Warning struct {
	// Line is the 1-based input line number.
	Line int `json:"line"`

	// Text is the offending line, trimmed.
	Text string `json:"text"`

	// Code classifies the problem.
	Code WarningCode `json:"code"`

	// Detail is a human-readable explanation.
	Detail string `json:"detail"`
}

// String formats the warning for logs.
func (w Warning) String() string {
	return fmt.Sprintf("line %d [%s]: %s: %q", w.Line, w.Code, w.Detail, w.Text)
}

// Result is a completed parse: the canonical Set plus any warnings. It is
// the unit stored by memoization caches.
type Result struct {
	Set      *Set      `json:"set"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Cache memoizes parse results keyed on the exact input text. Implementations
// must be safe for concurrent use; last-writer-wins on racing Puts is
// acceptable since parses of identical text are idempotent.
type Cache interface {
	// Get returns the cached result for key, if present.
	Get(key string) (Result, bool)

	// Put stores the result for key, evicting older entries as needed.
	Put(key string, res Result)
}

// Parser converts raw endpoint lines into canonical Sets.
//
// A Parser is stateless apart from its optional cache and is safe for
// concurrent use.
type Parser struct {
	cache Cache
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithCache sets the memoization cache. Without a cache every Parse call
// re-runs the full tokenization.
func WithCache(c Cache) ParserOption {
	return func(p *Parser) {
		p.cache = c
	}
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts endpoint lines into a Set.
//
// Recognized forms per line: a bare IPv4 or IPv6 literal, IPv4:port,
// [IPv6]:port (brackets mandatory when a port follows an IPv6 literal), and
// hostname with or without :port. Empty lines are skipped. Lines that match
// no form yield a Warning and contribute nothing; a line whose port text is
// invalid degrades to host-only with a Warning. Parse never fails.
func (p *Parser) Parse(lines []string) (*Set, []Warning) {
	if p.cache != nil {
		key := cacheKey(lines)
		if res, ok := p.cache.Get(key); ok {
			return res.Set, res.Warnings
		}
		set, warns := parseLines(lines)
		p.cache.Put(key, Result{Set: set, Warnings: warns})
		return set, warns
	}
	return parseLines(lines)
}

// ParseText splits text on newlines and parses the lines.
func (p *Parser) ParseText(text string) (*Set, []Warning) {
	return p.Parse(strings.Split(text, "\n"))
}

// cacheKey encodes lines injectively: each line is length-prefixed so that
// distinct slices never collide, even when a line itself contains the
// separator (["a\nb"] vs ["a", "b"]).
func cacheKey(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(strconv.Itoa(len(line)))
		b.WriteByte(':')
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func parseLines(lines []string) (*Set, []Warning) {
	b := newSetBuilder()
	var warns []Warning

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if w, ok := parseLine(b, line); !ok {
			w.Line = i + 1
			warns = append(warns, w)
		}
	}
	return b.build(), warns
}

// parseLine classifies one trimmed, non-empty line and records its
// contribution. When the line is fully or partially rejected it returns a
// Warning (without the line number) and ok=false.
func parseLine(b *setBuilder, line string) (Warning, bool) {
	// Bracketed IPv6, with or without a trailing port.
	if strings.HasPrefix(line, "[") {
		return parseBracketed(b, line)
	}

	switch strings.Count(line, ":") {
	case 0:
		// Bare IPv4 or hostname.
		if net.ParseIP(line) != nil || isHostname(line) {
			b.addHost(line)
			return Warning{}, true
		}
		return Warning{
			Text:   line,
			Code:   WarnUnrecognized,
			Detail: "not an address or hostname",
		}, false

	case 1:
		// IPv4:port or hostname:port.
		host, portText, _ := strings.Cut(line, ":")
		if net.ParseIP(host) == nil && !isHostname(host) {
			return Warning{
				Text:   line,
				Code:   WarnUnrecognized,
				Detail: "not an address or hostname",
			}, false
		}
		port, err := parsePort(portText)
		if err != nil {
			// Trailing text is not a port; keep the host.
			b.addHost(host)
			return Warning{
				Text:   line,
				Code:   WarnInvalidPort,
				Detail: err.Error(),
			}, false
		}
		b.addPair(host, port)
		return Warning{}, true

	default:
		// Multiple colons without brackets: only a bare IPv6 literal fits.
		if ip := net.ParseIP(line); ip != nil {
			b.addHost(line)
			return Warning{}, true
		}
		return Warning{
			Text:   line,
			Code:   WarnUnrecognized,
			Detail: "not an IPv6 literal; IPv6 with port requires [addr]:port",
		}, false
	}
}

// parseBracketed handles [IPv6] and [IPv6]:port forms.
func parseBracketed(b *setBuilder, line string) (Warning, bool) {
	end := strings.Index(line, "]")
	if end < 0 {
		return Warning{
			Text:   line,
			Code:   WarnUnrecognized,
			Detail: "unterminated bracket",
		}, false
	}

	host := line[1:end]
	if ip := net.ParseIP(host); ip == nil || !strings.Contains(host, ":") {
		return Warning{
			Text:   line,
			Code:   WarnUnrecognized,
			Detail: "brackets must enclose an IPv6 literal",
		}, false
	}

	rest := line[end+1:]
	if rest == "" {
		// Bracketed address without a port still names a host.
		b.addHost(host)
		return Warning{}, true
	}
	if !strings.HasPrefix(rest, ":") {
		return Warning{
			Text:   line,
			Code:   WarnUnrecognized,
			Detail: "unexpected text after bracketed address",
		}, false
	}

	port, err := parsePort(rest[1:])
	if err != nil {
		b.addHost(host)
		return Warning{
			Text:   line,
			Code:   WarnInvalidPort,
			Detail: err.Error(),
		}, false
	}
	b.addPair(host, port)
	return Warning{}, true
}

func parsePort(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty port")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("port %q is not numeric", s)
		}
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("port %q is not numeric", s)
	}
	if port < MinPort || port > MaxPort {
		return 0, fmt.Errorf("port %d out of range %d-%d", port, MinPort, MaxPort)
	}
	return port, nil
}

// isHostname reports whether s is a plausible DNS name: dot-separated labels
// of letters, digits, hyphens, and underscores, no label empty or longer
// than 63 bytes, and no leading or trailing hyphen in a label.
func isHostname(s string) bool {
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case c >= 'a' && c <= 'z':
			case c >= 'A' && c <= 'Z':
			case c >= '0' && c <= '9':
			case c == '-' || c == '_':
			default:
				return false
			}
		}
	}
	return true
}
