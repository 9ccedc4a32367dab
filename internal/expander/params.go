package expander

import (
	"net/netip"
	"net/url"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Dleifnesor/PAW/internal/resolver"
)

// Class is the kind of value recognised in a prompt. Lower values take precedence.
type Class int

const (
	ClassCIDR Class = iota
	ClassIP
	ClassURL
	ClassPath
	ClassHostname
	ClassToken
)

func (c Class) String() string {
	switch c {
	case ClassCIDR:
		return "cidr"
	case ClassIP:
		return "ip"
	case ClassURL:
		return "url"
	case ClassPath:
		return "path"
	case ClassHostname:
		return "hostname"
	default:
		return "token"
	}
}

// Param is a value lifted from the prompt.
type Param struct {
	Value string `json:"value"`
	Class Class  `json:"-"`
	Pos   int    `json:"pos"` // index of the whitespace-separated field
}

var (
	hostnameRe = regexp.MustCompile(`^(?i)([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)
	tokenRe    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:,@=+-]*$`)

	fileExts = map[string]struct{}{
		".txt": {}, ".lst": {}, ".log": {}, ".conf": {}, ".cfg": {}, ".pcap": {}, ".pcapng": {},
		".cap": {}, ".hash": {}, ".hashes": {}, ".json": {}, ".xml": {}, ".csv": {}, ".gz": {},
		".zip": {}, ".db": {}, ".sql": {}, ".out": {}, ".nmap": {}, ".gnmap": {}, ".rules": {},
		".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
		".odt": {}, ".ods": {}, ".rtf": {}, ".htm": {}, ".html": {}, ".yaml": {}, ".yml": {}, ".pem": {},
	}
)

// Extract classifies each whitespace-separated field of prompt and returns the
// recognised values ordered by class precedence, then by position. Fields equal
// to one of skip (case-insensitive) and stop words never become tokens.
func Extract(prompt string, skip ...string) []Param {
	skipSet := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipSet[strings.ToLower(s)] = struct{}{}
	}

	var params []Param
	seen := make(map[string]struct{})
	for pos, field := range strings.Fields(prompt) {
		value := trimField(field)
		if value == "" {
			continue
		}
		class, ok := classify(value)
		if !ok {
			continue
		}
		if class == ClassToken {
			if _, s := skipSet[strings.ToLower(value)]; s || resolver.IsStopWord(value) {
				continue
			}
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		params = append(params, Param{Value: value, Class: class, Pos: pos})
	}

	sort.SliceStable(params, func(i, j int) bool {
		if params[i].Class != params[j].Class {
			return params[i].Class < params[j].Class
		}
		return params[i].Pos < params[j].Pos
	})
	return params
}

// trimField strips surrounding punctuation. Trailing colons are kept when they
// belong to an IPv6 literal such as fe80::.
func trimField(f string) string {
	f = strings.TrimLeft(f, "\"'`([{<,;!?")
	if v := strings.TrimRight(f, "\"'`)]}>,;!?"); strings.HasSuffix(v, ":") {
		if _, err := netip.ParseAddr(v); err == nil {
			return v
		}
	}
	return strings.TrimRight(f, "\"'`)]}>,;!?.:")
}

func classify(v string) (Class, bool) {
	if _, err := netip.ParsePrefix(v); err == nil {
		return ClassCIDR, true
	}
	if _, err := netip.ParseAddr(v); err == nil {
		return ClassIP, true
	}
	if isURL(v) {
		return ClassURL, true
	}
	if isPath(v) {
		return ClassPath, true
	}
	if hostnameRe.MatchString(v) {
		return ClassHostname, true
	}
	if tokenRe.MatchString(v) {
		return ClassToken, true
	}
	return 0, false
}

func isURL(v string) bool {
	if !strings.Contains(v, "://") {
		return false
	}
	u, err := url.Parse(v)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func isPath(v string) bool {
	for _, prefix := range []string{"/", "~/", "./", "../"} {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	if strings.Contains(v, "/") {
		return true
	}
	_, ok := fileExts[strings.ToLower(filepath.Ext(v))]
	return ok
}
