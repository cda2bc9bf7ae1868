// Package query implements the parameter map used by CloudStack API calls,
// along with the canonical encoding that the request signature is computed
// over.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode"
)

// ErrInvalidKey is returned when a parameter key cannot be carried as a
// plain query string key.
var ErrInvalidKey = errors.New("invalid parameter key")

// Params maps parameter names to their string values. Iteration order is
// irrelevant: every consumer sorts before use.
type Params map[string]string

// Pair is a single key/value entry of a Params, used wherever order matters.
type Pair struct {
	Key   string
	Value string
}

// Clone returns a copy of p. A nil Params clones to an empty, non-nil one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy of p with key set to value. p itself is untouched.
func (p Params) With(key, value string) Params {
	out := p.Clone()
	out[key] = value
	return out
}

// Without returns a copy of p with the given keys removed.
func (p Params) Without(keys ...string) Params {
	out := p.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Merge returns a copy of p with every entry of other applied on top.
func (p Params) Merge(other Params) Params {
	out := p.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Keys returns the keys of p in byte order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sorted returns the entries of p ordered by key, byte-wise.
func (p Params) Sorted() []Pair {
	keys := p.Keys()
	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{Key: k, Value: p[k]}
	}
	return pairs
}

// Validate checks every key in p with ValidateKey.
func (p Params) Validate() error {
	for _, k := range p.Keys() {
		if err := ValidateKey(k); err != nil {
			return err
		}
	}
	return nil
}

// ValidateKey reports whether key can be written verbatim into a query
// string. Keys are never percent-encoded, so separators, whitespace and
// control characters are rejected.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}
	for _, r := range key {
		switch {
		case r == '=', r == '&', r == '#', r == '?', r == '%':
			return fmt.Errorf("%w: %q contains reserved character %q", ErrInvalidKey, key, r)
		case unicode.IsSpace(r), unicode.IsControl(r):
			return fmt.Errorf("%w: %q contains whitespace or control characters", ErrInvalidKey, key)
		case r > unicode.MaxASCII:
			return fmt.Errorf("%w: %q contains non-ASCII characters", ErrInvalidKey, key)
		}
	}
	return nil
}

// Escape percent-encodes s for use as a query value. Unreserved characters
// (letters, digits, '-', '_', '.', '~') are kept, a space becomes "%20".
func Escape(s string) string {
	// url.QueryEscape already encodes a literal '+' as "%2B", so any '+'
	// left in its output stands for a space.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Canonicalize renders p as the sorted, percent-encoded query string the
// signature is computed over. Entries with empty values are dropped unless
// allowEmpty is set, in which case they are written as "key=".
func Canonicalize(p Params, allowEmpty bool) string {
	return Join(Filter(p.Sorted(), allowEmpty))
}

// Filter drops pairs with empty values unless allowEmpty is set.
func Filter(pairs []Pair, allowEmpty bool) []Pair {
	if allowEmpty {
		return pairs
	}
	out := make([]Pair, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Value == "" {
			continue
		}
		out = append(out, pair)
	}
	return out
}

// Join writes pairs in the order given as key=value entries separated by
// '&', escaping values with Escape.
func Join(pairs []Pair) string {
	var sb strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(pair.Key)
		sb.WriteByte('=')
		sb.WriteString(Escape(pair.Value))
	}
	return sb.String()
}
