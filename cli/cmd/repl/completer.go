package repl

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// isWordBoundary reports whether r delimits a completion word: space,
// member access, or expression punctuation.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!', '~',
		'&', '|', '^', ',', '?', ':', ';',
		'"', '\'', '`':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor and its byte boundaries in
// input. The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word at
// wordStart: for "x + theme.colors.pr" and the word "pr" it is
// "theme.colors". It is empty for a word not preceded by a dot.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// isCommand reports whether the cursor is in the name of a control
// command: the input starts with ':' and no space precedes the cursor.
func isCommand(input string, cursor int) bool {
	cursor = min(cursor, len(input))

	return strings.HasPrefix(input, ":") && !strings.ContainsAny(input[:cursor], " \t")
}

// completion is the state of the candidate list for the word at the
// cursor.
type completion struct {
	matches    fuzzy.Matches
	start, end int
}

// complete ranks the candidates for the word at the cursor. An empty word
// lists every member after a dot, and nothing at the top level.
func (s *session) complete(ctx context.Context, input string, cursor int) completion {
	word, start, end := wordBounds(input, cursor)
	c := completion{start: start, end: end}

	var candidates []string

	switch parent := parentPath(input, start); {
	case isCommand(input, cursor):
		if word == "" {
			return c
		}

		candidates = commandNames()
	case parent != "":
		candidates = s.members(ctx, parent)
	case word == "":
		return c
	default:
		candidates = s.names(ctx)
	}

	if word == "" {
		c.matches = make(fuzzy.Matches, len(candidates))
		for i, name := range candidates {
			c.matches[i] = fuzzy.Match{Str: name, Index: i}
		}

		return c
	}

	c.matches = fuzzy.Find(word, candidates)

	return c
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit width. The selected candidate is highlighted while tab-cycling.
func renderCandidateBar(matches fuzzy.Matches, selected int, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && used+w+lipgloss.Width(ellipsis) > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// emphasized.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, hit := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, hit = selectedStyle, selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(hit.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
