package vocab

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// rewrite is one compiled substitution.
type rewrite interface {
	rewrite(input string) (output string, changed bool)
}

// Normalizer cleans up dictated text before it reaches the note. It applies
// built-in spoken-form substitutions plus user rules loaded from a file, and
// repeats passes until the text stops changing.
type Normalizer struct {
	rewrites  []rewrite
	maxPasses int
}

// New builds a Normalizer from the file at path. An empty path or a missing
// file yields a normalizer with only the built-in spoken forms.
func New(path string, maxPasses int) (*Normalizer, error) {
	if maxPasses <= 0 {
		maxPasses = 30
	}

	rewrites := builtinRewrites()

	if strings.TrimSpace(path) != "" {
		contents, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read vocabulary file %q: %w", path, err)
		}
		if err == nil {
			userRules, err := parseVocabulary(string(contents))
			if err != nil {
				return nil, fmt.Errorf("failed to parse vocabulary file %q: %w", path, err)
			}
			rewrites = append(rewrites, userRules...)
		}
	}

	return &Normalizer{rewrites: rewrites, maxPasses: maxPasses}, nil
}

// Apply normalizes one chunk of dictated text.
func (n *Normalizer) Apply(text string) (string, error) {
	result := text
	for i := 0; i < n.maxPasses; i++ {
		changed := false
		for _, r := range n.rewrites {
			next, ruleChanged := r.rewrite(result)
			if ruleChanged {
				result = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return tidy(result), nil
}

// parseVocabulary reads user rules, one per line. Two forms are accepted:
//
//	spoken => written        case-insensitive whole-phrase replacement
//	s/pattern/replacement/g  sed-style regex substitution
//
// Blank lines and lines starting with # are ignored.
func parseVocabulary(contents string) ([]rewrite, error) {
	lines := strings.Split(contents, "\n")
	rules := make([]rewrite, 0, len(lines))

	for index, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var (
			rule rewrite
			err  error
		)
		switch {
		case looksLikePattern(line):
			rule, err = parsePatternRule(line)
		case strings.Contains(line, "=>"):
			rule, err = parsePhraseRule(line)
		default:
			err = errors.New("unsupported rule format")
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", index+1, err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

type phraseRule struct {
	re          *regexp.Regexp
	replacement string
}

func parsePhraseRule(line string) (rewrite, error) {
	parts := strings.SplitN(line, "=>", 2)
	spoken := strings.TrimSpace(parts[0])
	written := strings.TrimSpace(parts[1])
	if spoken == "" {
		return nil, errors.New("phrase rule source cannot be empty")
	}

	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(spoken) + `\b`)
	if err != nil {
		return nil, fmt.Errorf("invalid phrase: %w", err)
	}
	return phraseRule{re: re, replacement: written}, nil
}

func (r phraseRule) rewrite(input string) (string, bool) {
	output := r.re.ReplaceAllString(input, r.replacement)
	return output, output != input
}

type patternRule struct {
	re          *regexp.Regexp
	replacement string
	global      bool
}

func looksLikePattern(line string) bool {
	return len(line) > 1 && line[0] == 's' && !isWordByte(line[1])
}

func parsePatternRule(line string) (rewrite, error) {
	delim := line[1]

	pattern, pos, err := readDelimited(line, 2, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	replacement, pos, err := readDelimited(line, pos, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid replacement: %w", err)
	}

	var global, multiLine, dotAll bool
	for _, flag := range strings.TrimSpace(line[pos:]) {
		switch flag {
		case 'i':
			// case-insensitive is always on
		case 'g':
			global = true
		case 'm':
			multiLine = true
		case 's':
			dotAll = true
		default:
			return nil, fmt.Errorf("unsupported flag %q", flag)
		}
	}

	prefix := "i"
	if multiLine {
		prefix += "m"
	}
	if dotAll {
		prefix += "s"
	}
	re, err := regexp.Compile("(?" + prefix + ")" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	return patternRule{re: re, replacement: replacement, global: global}, nil
}

func (r patternRule) rewrite(input string) (string, bool) {
	if r.global {
		output := r.re.ReplaceAllString(input, r.replacement)
		return output, output != input
	}

	loc := r.re.FindStringIndex(input)
	if loc == nil {
		return input, false
	}
	segment := input[loc[0]:loc[1]]
	output := input[:loc[0]] + r.re.ReplaceAllString(segment, r.replacement) + input[loc[1]:]
	return output, output != input
}

func readDelimited(line string, start int, delim byte) (string, int, error) {
	if start >= len(line) {
		return "", 0, errors.New("unexpected end of expression")
	}

	var builder strings.Builder
	escaped := false
	for index := start; index < len(line); index++ {
		char := line[index]
		if escaped {
			builder.WriteByte(char)
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			builder.WriteByte(char)
			continue
		}
		if char == delim {
			return builder.String(), index + 1, nil
		}
		builder.WriteByte(char)
	}
	return "", 0, errors.New("unterminated expression")
}

func isWordByte(char byte) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9') ||
		char == ' ' || char == '\t'
}

// builtinRewrites covers spoken punctuation and common clinical shorthand.
func builtinRewrites() []rewrite {
	spoken := []struct{ from, to string }{
		{"full stop", "."},
		{"period", "."},
		{"comma", ","},
		{"new paragraph", "\n\n"},
		{"new line", "\n"},
		{"open quote", "\""},
		{"close quote", "\""},
		{"milligrams", "mg"},
		{"micrograms", "mcg"},
		{"milliliters", "ml"},
		{"twice daily", "b.i.d."},
		{"three times daily", "t.i.d."},
		{"four times daily", "q.i.d."},
		{"as needed", "p.r.n."},
		{"by mouth", "p.o."},
	}

	rewrites := make([]rewrite, 0, len(spoken))
	for _, s := range spoken {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(s.from) + `\b`)
		rewrites = append(rewrites, phraseRule{re: re, replacement: s.to})
	}
	return rewrites
}

var (
	spaceBeforePunct = regexp.MustCompile(`\s+([.,;:!?])`)
	repeatedSpaces   = regexp.MustCompile(`[^\S\n]{2,}`)
)

// tidy removes the whitespace artifacts substitution leaves behind.
func tidy(text string) string {
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = repeatedSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
