package expander

import (
	"regexp"
	"strings"
)

type acceptFunc func(Param) bool

var (
	wordRe = regexp.MustCompile(`[a-z0-9]+`)
	portRe = regexp.MustCompile(`^\d{1,5}([,-]\d{1,5})*$`)
)

// placeholderClasses maps words found in placeholder names to the value
// classes they accept.
var placeholderClasses = map[string][]Class{
	"target":   {ClassCIDR, ClassIP, ClassURL, ClassHostname},
	"ip":       {ClassIP},
	"host":     {ClassHostname, ClassIP},
	"hostname": {ClassHostname, ClassIP},
	"domain":   {ClassHostname, ClassIP},
	"url":      {ClassURL},
	"file":     {ClassPath},
	"path":     {ClassPath},
	"wordlist": {ClassPath},
	"output":   {ClassPath},
	"dir":      {ClassPath},
	"network":  {ClassCIDR, ClassIP},
	"range":    {ClassCIDR, ClassIP},
	"subnet":   {ClassCIDR, ClassIP},
	"cidr":     {ClassCIDR, ClassIP},
}

// acceptorFor returns the predicate for a placeholder name and whether the name
// is typed. Compound names such as target_ip accept the union of their words.
// Untyped names accept any value, bare tokens included.
func acceptorFor(name string) (acceptFunc, bool) {
	classes := make(map[Class]struct{})
	port := false
	for _, w := range wordRe.FindAllString(strings.ToLower(name), -1) {
		if w == "port" || w == "ports" {
			port = true
			continue
		}
		cs, ok := placeholderClasses[w]
		if !ok && (strings.HasSuffix(w, "file") || strings.HasSuffix(w, "list")) {
			cs, ok = placeholderClasses["file"], true
		}
		if !ok {
			continue
		}
		for _, c := range cs {
			classes[c] = struct{}{}
		}
	}

	if len(classes) == 0 && !port {
		return func(Param) bool { return true }, false
	}
	return func(p Param) bool {
		if _, ok := classes[p.Class]; ok {
			return true
		}
		return port && p.Class == ClassToken && portRe.MatchString(p.Value)
	}, true
}
