package kv

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

// Pair is a single name-value entry. Used for both request and response headers.
type Pair struct {
	Key, Value string
}

// Storage keeps (string, string) pairs in their arrival order. Duplicate keys are allowed and
// preserved. Lookups are case-insensitive and linear, which beats a map on the amount of
// entries an ordinary request carries.
type Storage struct {
	pairs []Pair
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance of Storage with pre-allocated underlying storage.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make([]Pair, 0, n),
	}
}

// NewFromPairs returns a new instance holding the given pairs in the same order.
func NewFromPairs(pairs ...Pair) *Storage {
	return &Storage{
		pairs: append(make([]Pair, 0, len(pairs)), pairs...),
	}
}

// Add appends a new pair, regardless of whether the key is already presented.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	return s
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned
func (s *Storage) Value(key string) string {
	return s.ValueOr(key, "")
}

// ValueOr returns either the first value corresponding to the key or the fallback.
func (s *Storage) ValueOr(key, or string) string {
	value, found := s.Get(key)
	if !found {
		return or
	}

	return value
}

// Get returns the first value and a bool, indicating whether the value was found.
func (s *Storage) Get(key string) (value string, found bool) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Values iterates over all values of the key in their arrival order.
func (s *Storage) Values(key string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, pair := range s.pairs {
			if strcomp.EqualFold(pair.Key, key) && !yield(pair.Value) {
				return
			}
		}
	}
}

// Pairs iterates over all the stored pairs.
func (s *Storage) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	_, found := s.Get(key)
	return found
}

// Len returns a number of stored pairs.
func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return s.Len() == 0
}

// Clone creates a deep copy. Values referencing a parser's buffers must be cloned if they're
// going to outlive the request.
func (s *Storage) Clone() *Storage {
	pairs := make([]Pair, len(s.pairs))
	for i, pair := range s.pairs {
		pairs[i] = Pair{Key: clone(pair.Key), Value: clone(pair.Value)}
	}

	return &Storage{pairs: pairs}
}

// Expose exposes the underlying pairs slice.
func (s *Storage) Expose() []Pair {
	return s.pairs
}

// Clear all the entries. However, all the allocated space won't be freed.
func (s *Storage) Clear() *Storage {
	s.pairs = s.pairs[:0]
	return s
}

func clone(str string) string {
	return string(append([]byte(nil), str...))
}
