package metrics

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// Categorizer is implemented by errors that name their own report bucket.
type Categorizer interface {
	ErrorCategory() string
}

// ErrorTally counts failures by category.
type ErrorTally struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewErrorTally() *ErrorTally {
	return &ErrorTally{counts: make(map[string]int)}
}

// Record counts err under Categorize(err). Nil errors are ignored.
func (t *ErrorTally) Record(err error) {
	if err == nil {
		return
	}
	key := Categorize(err)
	t.mu.Lock()
	t.counts[key]++
	t.mu.Unlock()
}

// Breakdown returns a copy of the counts.
func (t *ErrorTally) Breakdown() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

// Reset drops all counts.
func (t *ErrorTally) Reset() {
	t.mu.Lock()
	clear(t.counts)
	t.mu.Unlock()
}

// Categorize maps err to a short report label. Errors that implement
// Categorizer anywhere in their chain win; then well-known stdlib failures;
// everything else falls back to the spaced-out name of the outermost type.
func Categorize(err error) string {
	if err == nil {
		return "Unknown error"
	}

	var c Categorizer
	if errors.As(err, &c) {
		if label := strings.TrimSpace(c.ErrorCategory()); label != "" {
			return label
		}
	}

	var netErr net.Error
	var pathErr *fs.PathError
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Context deadline exceeded"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "Network timeout"
	case errors.As(err, &pathErr):
		return "File access error"
	case errors.As(err, &urlErr):
		return "Request URL error"
	}
	return typeLabel(err)
}

// typeLabel turns the dynamic type of err into words, e.g. *tls.RecordHeaderError
// becomes "Record Header Error (tls)". fmt wrappers are looked through, and
// plain errors.New values are just "Error".
func typeLabel(err error) string {
	t := elemType(err)
	for t.PkgPath() == "fmt" {
		inner := errors.Unwrap(err)
		if inner == nil {
			break
		}
		err, t = inner, elemType(inner)
	}

	pkg := t.PkgPath()
	if i := strings.LastIndexByte(pkg, '/'); i >= 0 {
		pkg = pkg[i+1:]
	}
	switch pkg {
	case "errors", "fmt":
		return "Error"
	}
	words := splitWords(t.Name())
	if words == "" {
		return "Unknown error"
	}
	if pkg == "" || pkg == "main" {
		return words
	}
	return words + " (" + pkg + ")"
}

func elemType(err error) reflect.Type {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// splitWords breaks a Go identifier at case changes and digit runs, keeping
// acronyms such as HTTP whole and capitalizing the rest.
func splitWords(ident string) string {
	runes := []rune(ident)
	var b strings.Builder
	start := 0
	flush := func(end int) {
		if end <= start {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		word := runes[start:end]
		if !isAcronym(word) {
			word = []rune(strings.ToLower(string(word)))
			word[0] = unicode.ToUpper(word[0])
		}
		b.WriteString(string(word))
		start = end
	}
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		upperAfterLower := unicode.IsUpper(cur) && unicode.IsLower(prev)
		acronymEnd := unicode.IsUpper(cur) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
		digitStart := unicode.IsDigit(cur) && !unicode.IsDigit(prev)
		if upperAfterLower || acronymEnd || digitStart {
			flush(i)
		}
	}
	flush(len(runes))
	return b.String()
}

func isAcronym(word []rune) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}
