package expander

import (
	"testing"

	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/stretchr/testify/require"
)

func TestExpandFillsTargetWithCIDR(t *testing.T) {
	entry := registry.ToolEntry{Name: "nmap", Category: "Network Scanning", Usage: "nmap [options] <target>"}
	res := Expand(entry, "scan 192.168.1.0/24 for open ports")

	require.Equal(t, "nmap [options] 192.168.1.0/24", res.Command)
	require.True(t, res.AllFilled)
	require.Equal(t, []Binding{{Placeholder: "<target>", Value: "192.168.1.0/24", Class: "cidr"}}, res.Bindings)
	require.Empty(t, res.Missing)
}

func TestExpandLeavesPlaceholderWhenNothingRecognised(t *testing.T) {
	entry := registry.ToolEntry{Name: "nmap", Category: "Network Scanning", Usage: "nmap [options] <target>"}
	res := Expand(entry, "scan for open ports")

	require.Equal(t, "nmap [options] <target>", res.Command)
	require.False(t, res.AllFilled)
	require.Equal(t, []string{"<target>"}, res.Missing)
}

func TestExpandTypedPlaceholders(t *testing.T) {
	res := ExpandTemplate("hydra -l <user> -P <wordlist> <target> <service>",
		"hydra admin ssh 10.0.0.5 /usr/share/wordlists/rockyou.txt", "hydra")

	require.Equal(t, "hydra -l admin -P /usr/share/wordlists/rockyou.txt 10.0.0.5 ssh", res.Command)
	require.True(t, res.AllFilled)
}

func TestExpandCurlyPlaceholdersAndURL(t *testing.T) {
	res := ExpandTemplate("dirb {url} {wordlist}", "enumerate dirs on https://example.com/app using ./words.lst")
	require.Equal(t, "dirb https://example.com/app ./words.lst", res.Command)
	require.True(t, res.AllFilled)
}

func TestExpandHostnameAndDomain(t *testing.T) {
	res := ExpandTemplate("whois <domain>", "who owns example.org?")
	require.Equal(t, "whois example.org", res.Command)

	res = ExpandTemplate("nikto -h <target>", "check www.example.com for misconfigurations")
	require.Equal(t, "nikto -h www.example.com", res.Command)
}

func TestExpandIgnoresOptionalSegments(t *testing.T) {
	res := ExpandTemplate("gobuster dir -u <url> [-w <wordlist>]", "fuzz http://10.0.0.1/ with big.txt")
	require.Equal(t, "gobuster dir -u http://10.0.0.1/ [-w <wordlist>]", res.Command)
	require.True(t, res.AllFilled)
	require.Equal(t, []string{"<url>"}, Placeholders("gobuster dir -u <url> [-w <wordlist>]"))
}

func TestExpandEachValueUsedOnce(t *testing.T) {
	res := ExpandTemplate("tool <ip> <target>", "ping 10.0.0.1")
	require.Equal(t, "tool 10.0.0.1 <target>", res.Command)
	require.False(t, res.AllFilled)
	require.Equal(t, []string{"<target>"}, res.Missing)
}

func TestExpandRepeatedNameSharesValue(t *testing.T) {
	res := ExpandTemplate("ping -c 1 <host> && traceroute <host>", "trace example.net")
	require.Equal(t, "ping -c 1 example.net && traceroute example.net", res.Command)
	require.True(t, res.AllFilled)
}

func TestExpandPorts(t *testing.T) {
	res := ExpandTemplate("masscan -p <ports> <target>", "sweep ports 80,443 across 10.0.0.0/8")
	require.Equal(t, "masscan -p 80,443 10.0.0.0/8", res.Command)

	res = ExpandTemplate("masscan -p <ports> <target>", "sweep 10.0.0.0/8")
	require.Equal(t, "masscan -p <ports> 10.0.0.0/8", res.Command)
	require.False(t, res.AllFilled)
}

func TestExpandTemplateWithoutPlaceholders(t *testing.T) {
	res := ExpandTemplate("airmon-ng", "list wireless interfaces")
	require.Equal(t, "airmon-ng", res.Command)
	require.True(t, res.AllFilled)
}

func TestExtractPrecedence(t *testing.T) {
	params := Extract("check example.com 10.1.1.1 /etc/passwd 10.0.0.0/16 http://a.io now")
	var classes []Class
	for _, p := range params {
		classes = append(classes, p.Class)
	}
	require.Equal(t, []Class{ClassCIDR, ClassIP, ClassURL, ClassPath, ClassHostname, ClassToken, ClassToken}, classes)
	require.Equal(t, "10.0.0.0/16", params[0].Value)
	require.Equal(t, "check", params[5].Value)
	require.Equal(t, "now", params[6].Value)
}

func TestExtractTrimsPunctuation(t *testing.T) {
	params := Extract(`scan "10.0.0.1", then (example.com).`)
	require.Equal(t, "10.0.0.1", params[0].Value)
	require.Equal(t, ClassIP, params[0].Class)
	require.Equal(t, "example.com", params[1].Value)
	require.Equal(t, ClassHostname, params[1].Class)
}

func TestExtractKeepsIPv6TrailingColons(t *testing.T) {
	params := Extract("scan fe80:: and ::, then 10.0.0.1:")
	require.Equal(t, "fe80::", params[0].Value)
	require.Equal(t, ClassIP, params[0].Class)
	require.Equal(t, "::", params[1].Value)
	require.Equal(t, ClassIP, params[1].Class)
	require.Equal(t, "10.0.0.1", params[2].Value)
	require.Equal(t, ClassIP, params[2].Class)

	res := ExpandTemplate("nmap <target>", "scan fe80::", "nmap")
	require.Equal(t, "nmap fe80::", res.Command)
	require.True(t, res.AllFilled)
}

func TestExpandDocumentIsNotATarget(t *testing.T) {
	params := Extract("scan report.pdf")
	require.Equal(t, ClassPath, params[0].Class)
	require.Equal(t, "report.pdf", params[0].Value)

	res := ExpandTemplate("nmap <target>", "scan report.pdf", "nmap")
	require.Equal(t, "nmap <target>", res.Command)
	require.False(t, res.AllFilled)
}

func TestStripOptional(t *testing.T) {
	require.Equal(t, "nmap 10.0.0.0/24", StripOptional("nmap [options] 10.0.0.0/24"))
	require.Equal(t, "dirb http://x/", StripOptional("dirb http://x/ [wordlist] [options]"))
	require.Equal(t, "echo hi", StripOptional("  echo hi "))
	require.Equal(t, "tool", StripOptional("tool [-a [nested]]"))
}
