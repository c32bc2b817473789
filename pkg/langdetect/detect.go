// Package langdetect guesses the language of a code block so an untagged
// fence can be given an info string.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Unknown is returned when no language is recognized.
const Unknown = "text"

// candidates limits the enry classifier to languages common in docs.
var candidates = []string{ //nolint:gochecknoglobals // fixed candidate set
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile",
}

// snippet is a code block prepared for matching.
type snippet struct {
	raw     []byte
	trimmed []byte
	text    string
	upper   string
}

func newSnippet(content []byte) snippet {
	trimmed := bytes.TrimSpace(content)
	return snippet{
		raw:     content,
		trimmed: trimmed,
		text:    string(content),
		upper:   strings.ToUpper(string(trimmed)),
	}
}

// rule tags a snippet with lang when match accepts it.
type rule struct {
	lang  string
	match func(s snippet) bool
}

// rules are tried in order, most specific first.
var rules = []rule{ //nolint:gochecknoglobals // ordered rule table
	{"go", func(s snippet) bool { return bytes.HasPrefix(s.trimmed, []byte("package ")) }},
	{"python", isPython},
	{"html", func(s snippet) bool {
		lower := bytes.ToLower(s.trimmed)
		return containsAny(string(lower), "<!doctype html", "<html", "<head>", "<body>")
	}},
	{"json", func(s snippet) bool {
		return (bytes.HasPrefix(s.trimmed, []byte("{")) || bytes.HasPrefix(s.trimmed, []byte("["))) &&
			bytes.ContainsRune(s.trimmed, '"')
	}},
	{"dockerfile", func(s snippet) bool {
		return bytes.HasPrefix(s.trimmed, []byte("FROM ")) ||
			(strings.Contains(s.text, "\nFROM ") && strings.Contains(s.text, "\nRUN ")) ||
			(strings.Contains(s.text, "WORKDIR ") && strings.Contains(s.text, "COPY "))
	}},
	{"sql", func(s snippet) bool {
		for _, kw := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
			if strings.HasPrefix(s.upper, kw) {
				return true
			}
		}
		return false
	}},
	{"rust", func(s snippet) bool { return containsAny(s.text, "fn main()", "println!", "let mut ") }},
	{"javascript", func(s snippet) bool { return containsAny(s.text, "=>", "const ", "let ", "console.log") }},
	{"yaml", isYAML},
}

// Detect returns the fence tag for code content, or Unknown. A shebang
// wins, then the pattern rules, then the enry classifier when it is sure.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return Unknown
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	s := newSnippet(content)
	for _, r := range rules {
		if r.match(s) {
			return r.lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return normalize(lang)
	}
	return Unknown
}

func isPython(s snippet) bool {
	if strings.Contains(s.text, "def ") && strings.Contains(s.text, "):") {
		return true
	}
	// "import (" is Go.
	if strings.Contains(s.text, "import ") && !strings.Contains(s.text, "import (") &&
		(strings.Contains(s.text, "from ") || bytes.HasPrefix(s.trimmed, []byte("import "))) {
		return true
	}
	return containsAny(s.text, "__name__", "__main__")
}

// isYAML counts "key: value" lines and root list items.
func isYAML(s snippet) bool {
	keys := 0
	for line := range bytes.SplitSeq(s.raw, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if bytes.Contains(line, []byte(": ")) && !bytes.ContainsAny(line, "({") && line[0] != '"' {
			keys++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			keys++
		}
	}
	return keys >= 2
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}
