// Package sample extracts condition and replicate metadata from sample names.
package sample

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Vocabulary is the closed set of recognized group tokens. A token may carry
// a display form it is normalized to (e.g. "921" -> "92.1").
type Vocabulary struct {
	tokens  []string          // search order
	display map[string]string // token -> display form
	re      *regexp.Regexp
}

// NewVocabulary creates an empty vocabulary
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		display: make(map[string]string),
	}
}

// Add adds a token, or updates the display form of an existing one. An empty
// display means the token is shown as is. Tokens are searched in the order
// they were added.
func (v *Vocabulary) Add(token, display string) {
	if token == "" {
		return
	}
	if display == "" {
		display = token
	}
	if _, ok := v.display[token]; !ok {
		v.tokens = append(v.tokens, token)
	}
	v.display[token] = display
	v.compile()
}

// compile rebuilds the alternation so that Match never mutates state.
func (v *Vocabulary) compile() {
	if len(v.tokens) == 0 {
		v.re = nil
		return
	}
	quoted := make([]string, len(v.tokens))
	for i, t := range v.tokens {
		quoted[i] = regexp.QuoteMeta(t)
	}
	v.re = regexp.MustCompile("(" + strings.Join(quoted, "|") + ")")
}

// Tokens returns the tokens in search order.
func (v *Vocabulary) Tokens() []string {
	return append([]string(nil), v.tokens...)
}

// Display returns the display form of a token.
func (v *Vocabulary) Display(token string) (string, bool) {
	d, ok := v.display[token]
	return d, ok
}

// Len returns the number of tokens.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Match finds the leftmost token occurring in s. At a given position the
// earliest added token wins. It returns the display form and the byte span
// of the match.
func (v *Vocabulary) Match(s string) (group string, start, end int, ok bool) {
	if v.re == nil {
		return "", 0, 0, false
	}
	loc := v.re.FindStringIndex(s)
	if loc == nil {
		return "", 0, 0, false
	}
	return v.display[s[loc[0]:loc[1]]], loc[0], loc[1], true
}

// LoadFromCSV loads tokens from a CSV file (format: token,display)
func (v *Vocabulary) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	if scanner.Scan() {
		// header line
	}

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		token := strings.TrimSpace(parts[0])
		if token == "" {
			return fmt.Errorf("line %d: empty group token", lineNum)
		}

		display := ""
		if len(parts) > 1 {
			display = strings.TrimSpace(parts[1])
		}

		v.Add(token, display)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// DefaultVocabulary returns the cell lines of the uveal melanoma panel.
func DefaultVocabulary() *Vocabulary {
	v := NewVocabulary()

	v.Add("Mel202", "")
	v.Add("92.1", "")
	v.Add("921", "92.1")
	v.Add("MP41", "")
	v.Add("MP46", "")

	return v
}
