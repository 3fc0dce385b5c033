package editor

import (
	"bufio"
	"bytes"
	"strings"
	"unicode"

	"github.com/dshills/winctl/internal/symbols"
)

// declPrefixes maps common declaration keywords to symbol kinds for files
// without a tree-sitter grammar.
var declPrefixes = []struct {
	keyword string
	kind    symbols.Kind
}{
	{"func ", symbols.KindFunction},
	{"function ", symbols.KindFunction},
	{"def ", symbols.KindFunction},
	{"fn ", symbols.KindFunction},
	{"pub fn ", symbols.KindFunction},
	{"local function ", symbols.KindFunction},
	{"class ", symbols.KindClass},
	{"struct ", symbols.KindStruct},
	{"pub struct ", symbols.KindStruct},
	{"interface ", symbols.KindInterface},
	{"module ", symbols.KindModule},
}

// ParseOutline extracts symbols line by line. Markdown headings become
// KindHeading entries; other files are scanned for declaration keywords at
// the start of a line.
func ParseOutline(lang string, content []byte) []symbols.Entry {
	var out []symbols.Entry
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inFence := false
	for line := 0; scanner.Scan(); line++ {
		text := scanner.Text()

		if lang == LangMarkdown {
			trimmed := strings.TrimSpace(text)
			if strings.HasPrefix(trimmed, "```") {
				inFence = !inFence
				continue
			}
			if inFence {
				continue
			}
			if e, ok := markdownHeading(text, line); ok {
				out = append(out, e)
			}
			continue
		}

		if e, ok := declaration(text, line); ok {
			out = append(out, e)
		}
	}
	return out
}

func markdownHeading(text string, line int) (symbols.Entry, bool) {
	level := 0
	for level < len(text) && text[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(text) || text[level] != ' ' {
		return symbols.Entry{}, false
	}
	title := strings.TrimSpace(strings.TrimRight(text[level:], "# "))
	if title == "" {
		return symbols.Entry{}, false
	}
	return symbols.Entry{
		Name:   title,
		Kind:   symbols.KindHeading,
		Line:   line,
		Column: 0,
	}, true
}

func declaration(text string, line int) (symbols.Entry, bool) {
	indent := len(text) - len(strings.TrimLeft(text, " \t"))
	body := text[indent:]
	for _, p := range declPrefixes {
		if !strings.HasPrefix(body, p.keyword) {
			continue
		}
		rest := body[len(p.keyword):]
		name := identifier(rest)
		if name == "" {
			return symbols.Entry{}, false
		}
		return symbols.Entry{
			Name:   name,
			Kind:   p.kind,
			Line:   line,
			Column: indent + len(p.keyword) + strings.Index(rest, name),
		}, true
	}
	return symbols.Entry{}, false
}

// identifier returns the first identifier in s, skipping a leading Go
// receiver list.
func identifier(s string) string {
	s = strings.TrimLeft(s, " ")
	if strings.HasPrefix(s, "(") {
		if i := strings.IndexByte(s, ')'); i >= 0 {
			s = strings.TrimLeft(s[i+1:], " ")
		}
	}
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '$')
	})
	if end < 0 {
		end = len(s)
	}
	return strings.TrimRight(s[:end], ".")
}
