package backend

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// errNoRecord marks info output that has content but no package record.
var errNoRecord = errors.New("no package record in output")

// unrecognized reports a line that matches none of a parser's shapes.
func unrecognized(l string) error {
	return fmt.Errorf("unrecognized line %q", strings.TrimSpace(l))
}

// mentions reports whether s contains any of the phrases, ignoring case.
func mentions(s string, phrases ...string) bool {
	s = strings.ToLower(s)
	for _, p := range phrases {
		if strings.Contains(s, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// hasPrefix reports whether the trimmed line starts with any of prefixes.
func hasPrefix(l string, prefixes ...string) bool {
	l = strings.TrimSpace(l)
	for _, p := range prefixes {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}

// missing is the error for info output that yielded no record: nil when the
// output is empty or one of the tool's "not found" notices, errNoRecord
// otherwise.
func missing(out string, notices ...string) error {
	if strings.TrimSpace(out) == "" || mentions(out, notices...) {
		return nil
	}
	return errNoRecord
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07]*\x07`)

// stripANSI removes terminal escape sequences some tools emit even when
// their output is not a terminal.
func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// lines splits s into trimmed, non-empty lines. A carriage return inside a
// line means the tool redrew it, so only the text after the last one counts.
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if i := strings.LastIndexByte(strings.TrimRight(l, "\r"), '\r'); i >= 0 {
			l = l[i+1:]
		}
		l = strings.TrimRight(l, "\r \t")
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// keyValues parses "Key : value" blocks, the format shared by apt-cache
// show, pacman -Si, dnf info, zypper info, scoop info and snap info. Only
// the first occurrence of a key is kept; indented continuation lines are
// ignored.
func keyValues(s string) map[string]string {
	kv := map[string]string{}
	for _, l := range lines(s) {
		if l[0] == ' ' || l[0] == '\t' {
			continue
		}
		k, v, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if _, seen := kv[k]; seen || k == "" {
			continue
		}
		kv[k] = strings.TrimSpace(v)
	}
	return kv
}

// column is one header field of a fixed-width table.
type column struct {
	name  string
	start int
}

// table parses the fixed-width tables printed by winget, scoop, snap and
// similar tools. The header is the first line containing every name in
// want; each following row is sliced at the header's column offsets.
// Separator lines made of dashes are skipped. ok is false when no header
// was found.
func table(s string, want ...string) (rows []map[string]string, ok bool) {
	ls := lines(s)
	hdr := -1
	var cols []column
	for i, l := range ls {
		if c, ok := headerColumns(l, want); ok {
			hdr, cols = i, c
			break
		}
	}
	if hdr < 0 {
		return nil, false
	}

	for _, l := range ls[hdr+1:] {
		t := strings.TrimSpace(l)
		if strings.Trim(t, "-─ ") == "" {
			continue
		}
		r := []rune(l)
		row := map[string]string{}
		for i, c := range cols {
			end := len(r)
			if i+1 < len(cols) && cols[i+1].start < end {
				end = cols[i+1].start
			}
			if c.start >= len(r) {
				row[c.name] = ""
				continue
			}
			row[c.name] = strings.TrimSpace(string(r[c.start:end]))
		}
		rows = append(rows, row)
	}
	return rows, true
}

// tableRows parses a table and fails when output that is not one of the
// notices has no header.
func tableRows(out string, notices []string, want ...string) ([]map[string]string, error) {
	rows, ok := table(out, want...)
	if ok {
		return rows, nil
	}
	for _, l := range lines(out) {
		if !mentions(l, notices...) {
			return nil, unrecognized(l)
		}
	}
	return nil, nil
}

// tabPairs parses "name<TAB>version" lines.
func tabPairs(out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		name, ver, ok := strings.Cut(l, "\t")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, unrecognized(l)
		}
		pkgs = append(pkgs, Package{Name: strings.TrimSpace(name), Version: strings.TrimSpace(ver)})
	}
	return pkgs, nil
}

// spacePairs parses "name version..." lines; the last field is the version.
func spacePairs(out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		fields := strings.Fields(l)
		if len(fields) < 2 || strings.HasSuffix(fields[0], ":") {
			return nil, unrecognized(l)
		}
		pkgs = append(pkgs, Package{Name: fields[0], Version: fields[len(fields)-1]})
	}
	return pkgs, nil
}

// pipePairs parses the "name|version" lines of choco --limit-output.
func pipePairs(out string) ([]Package, error) {
	var pkgs []Package
	for _, l := range lines(out) {
		name, ver, ok := strings.Cut(strings.TrimSpace(l), "|")
		if !ok || name == "" {
			return nil, unrecognized(l)
		}
		pkgs = append(pkgs, Package{Name: name, Version: ver})
	}
	return pkgs, nil
}

func headerColumns(l string, want []string) ([]column, bool) {
	fields := strings.Fields(l)
	if len(fields) == 0 {
		return nil, false
	}
	have := map[string]bool{}
	for _, f := range fields {
		have[f] = true
	}
	for _, w := range want {
		if !have[w] {
			return nil, false
		}
	}
	r := []rune(l)
	var cols []column
	pos := 0
	for _, f := range fields {
		fr := []rune(f)
		for pos+len(fr) <= len(r) && string(r[pos:pos+len(fr)]) != f {
			pos++
		}
		cols = append(cols, column{name: f, start: pos})
		pos += len(fr)
	}
	return cols, true
}

// firstLine returns the first line of s, trimmed.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// splitNameVersion splits "name-1.2.3" at the last dash, the way FreeBSD
// pkg prints package origins.
func splitNameVersion(s string) (string, string) {
	i := strings.LastIndexByte(s, '-')
	if i <= 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}
