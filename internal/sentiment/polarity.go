package sentiment

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

//go:embed lexicon/*.tsv
var lexiconFiles embed.FS

// NEGATION_FACTOR flips and dampens a negated word ("not good" is mildly
// negative rather than the mirror of "good").
const NEGATION_FACTOR = -0.5

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true, "neither": true,
	"nor": true, "cannot": true, "without": true,
	"isn't": true, "wasn't": true, "don't": true, "doesn't": true,
	"didn't": true, "can't": true, "couldn't": true, "won't": true,
	"wouldn't": true, "aren't": true, "weren't": true, "hardly": true,
}

type polarityLexicon struct {
	words     map[string]float64
	modifiers map[string]float64
}

func loadPolarityLexicon() (*polarityLexicon, error) {
	words, err := readLexicon("lexicon/polarity.tsv")
	if err != nil {
		return nil, err
	}
	modifiers, err := readLexicon("lexicon/modifiers.tsv")
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("polarity lexicon is empty")
	}

	return &polarityLexicon{words: words, modifiers: modifiers}, nil
}

func readLexicon(name string) (map[string]float64, error) {
	raw, err := lexiconFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	entries := make(map[string]float64)
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected 2 tab separated fields, got %d", name, line, len(fields))
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		entries[fields[0]] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", name, err)
	}

	return entries, nil
}

// score averages the polarity of every lexicon hit. A hit is scaled by a
// directly preceding modifier and flipped by a negation up to two tokens
// before it.
func (l *polarityLexicon) score(text string) float64 {
	tokens := tokenize(text)

	var sum float64
	var hits int
	for i, token := range tokens {
		value, ok := l.words[token]
		if !ok {
			continue
		}

		if i > 0 {
			if intensity, ok := l.modifiers[tokens[i-1]]; ok {
				value *= intensity
			}
		}
		for back := 1; back <= 2 && i-back >= 0; back++ {
			if negations[tokens[i-back]] {
				value *= NEGATION_FACTOR
				break
			}
		}

		sum += value
		hits++
	}

	if hits == 0 {
		return 0.0
	}
	return math.Max(-1, math.Min(1, sum/float64(hits)))
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	tokens := fields[:0]
	for _, field := range fields {
		if token := strings.Trim(field, "'"); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
