package mapreduce

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// isValidKeyword checks if a keyword should be included in results.
// Filters malformed tokens (unmatched delimiters, trailing special chars, unmatched quotes).
func isValidKeyword(word string) bool {
	if strings.HasSuffix(word, ":") || strings.HasSuffix(word, "=") {
		return false
	}

	// Check for unmatched opening delimiters
	if strings.Contains(word, "(") && !strings.Contains(word, ")") {
		return false
	}
	if strings.Contains(word, "[") && !strings.Contains(word, "]") {
		return false
	}
	if strings.Contains(word, "{") && !strings.Contains(word, "}") {
		return false
	}

	if strings.Count(word, "\"")%2 != 0 {
		return false
	}
	if strings.Count(word, "'")%2 != 0 {
		return false
	}

	return true
}

type kv struct {
	Key   string
	Value int
}

// rank returns valid keywords sorted by count descending, then alphabetically,
// limited to n.
func rank(wordCounts map[string]int, n int) []kv {
	var ss []kv
	for k, v := range wordCounts {
		if isValidKeyword(k) {
			ss = append(ss, kv{k, v})
		}
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	if n < 0 {
		n = 0
	}
	if len(ss) > n {
		ss = ss[:n]
	}
	return ss
}

// TopKeywords returns the top N keywords from aggregated word counts as formatted strings.
// Each string is formatted as "word:count" (e.g., "flood:12").
func TopKeywords(wordCounts map[string]int, n int) []string {
	ranked := rank(wordCounts, n)
	keywords := make([]string, len(ranked))
	for i, e := range ranked {
		keywords[i] = fmt.Sprintf("%s:%d", e.Key, e.Value)
	}
	return keywords
}

// WriteTopKeywords writes the top N keywords to w as a numbered list.
func WriteTopKeywords(w io.Writer, wordCounts map[string]int, n int) error {
	for i, e := range rank(wordCounts, n) {
		if _, err := fmt.Fprintf(w, "%d. %s: %d\n", i+1, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}
