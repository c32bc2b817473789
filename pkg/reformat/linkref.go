package reformat

import (
	"regexp"
	"strings"
)

// linkRefPattern matches a single-line link reference definition.
var linkRefPattern = regexp.MustCompile(
	`^ {0,3}\[((?:[^\\\[\]]|\\.){1,999})\]:[ \t]*(?:<[^<>\n]*>|[^ \t<][^ \t]*)` +
		`(?:[ \t]+(?:"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'|\((?:[^()\\]|\\.)*\)))?[ \t]*$`)

// linkRef reports whether line is a link reference definition the parser
// accepted.
func (f *formatter) linkRef(line string) bool {
	m := linkRefPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	return f.stream.HasReference(m[1])
}

// harvest collects the link reference definitions on the whole lines
// between two children of a container. Container markers are ignored; lines
// that continue a definition are kept with it.
func (f *formatter) harvest(start, end int) {
	if start > 0 && start < len(f.src) && f.src[start-1] != '\n' {
		start = lineEnd(f.src, start)
	}
	end = lineStart(f.src, min(end, len(f.src)))
	inRef := false
	for start < end {
		next := lineEnd(f.src, start)
		line := strings.TrimRight(f.src[start:min(next, end)], "\r\n")
		body := strings.TrimLeft(line, " \t>")
		offset := start + len(line) - len(body)
		body = strings.TrimRight(body, " \t")

		switch {
		case body == "":
			inRef = false
		case f.linkRef(body):
			f.refs = append(f.refs, f.borrow(offset, offset+len(body)))
			inRef = true
		case inRef:
			f.refs = append(f.refs, f.borrow(offset, offset+len(body)))
		}
		start = next
	}
}
