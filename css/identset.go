package css

import "strings"

// identSetMaxSize bounds an IdentifierSet's member count; Intern returns
// ErrOverflow once it would be exceeded. 32 bits of index space is far more
// than any real document needs, but the cap keeps the set's size decision
// explicit rather than unbounded.
const identSetMaxSize = 1 << 24

// IdentifierSet interns identifier-like strings (element types, class
// names, attribute names, property names) into small dense indices,
// deduplicating repeated spellings. Members are passed in as Go strings and
// keyed by their bytes (after case folding, see NewIdentifierSet); the set
// does not take a codepoint iterator and does not decode escapes, so callers
// pass already-decoded names such as a Token's Text.
type IdentifierSet struct {
	caseSensitive bool
	maxSize       int
	index         map[string]uint32
	values        []string
}

// NewIdentifierSet returns an empty set. When caseSensitive is false,
// members are compared by their strings.ToLower form, which folds non-ASCII
// letters as well as ASCII ones; the original spelling of the first insert
// is what's retained and returned by Get.
func NewIdentifierSet(caseSensitive bool) *IdentifierSet {
	return &IdentifierSet{
		caseSensitive: caseSensitive,
		maxSize:       identSetMaxSize,
		index:         make(map[string]uint32),
	}
}

// WithMaxSize overrides the default capacity; intended for tests that want
// to exercise the Overflow path without inserting 2^24 entries.
func (s *IdentifierSet) WithMaxSize(max int) *IdentifierSet {
	s.maxSize = max
	return s
}

func (s *IdentifierSet) key(ident string) string {
	if s.caseSensitive {
		return ident
	}
	return strings.ToLower(ident)
}

// Intern returns ident's index, inserting it if this is the first time it's
// been seen. Two calls with strings that compare equal under the set's case
// sensitivity return the same index.
func (s *IdentifierSet) Intern(ident string) (uint32, error) {
	k := s.key(ident)
	if idx, ok := s.index[k]; ok {
		return idx, nil
	}
	if len(s.values) >= s.maxSize {
		return 0, ErrOverflow
	}
	idx := uint32(len(s.values))
	s.values = append(s.values, ident)
	s.index[k] = idx
	return idx, nil
}

// Lookup returns ident's index without inserting it.
func (s *IdentifierSet) Lookup(ident string) (uint32, bool) {
	idx, ok := s.index[s.key(ident)]
	return idx, ok
}

// Get returns the original spelling stored at idx (the spelling of whichever
// call to Intern first produced idx).
func (s *IdentifierSet) Get(idx uint32) string {
	return s.values[idx]
}

// Len returns the number of distinct identifiers interned so far.
func (s *IdentifierSet) Len() int { return len(s.values) }
