// Package ids mints identifiers for client-side objects.
//
// Extension-issued ids are negative so they never collide with the positive
// ids the server hands out. Buttons additionally carry a negated app namespace:
// "{-namespace}-{-sequence}", e.g. "-1--42".
package ids

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// DefaultNamespace is the app namespace used when none is configured.
const DefaultNamespace int64 = 1

// ErrNotExtensionID is returned by Parse for ids not minted by Format.
var ErrNotExtensionID = errors.New("not an extension-issued id")

// Allocator hands out a strictly increasing sequence. It is safe for
// concurrent use and never repeats a value within the process.
type Allocator struct {
	last atomic.Int64
}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns the next sequence number, starting at 1.
func (a *Allocator) Next() int64 {
	return a.last.Add(1)
}

var shared = NewAllocator()

// Shared returns the process-wide allocator used by every feature that mints
// negative ids, so buttons and commands draw from one sequence.
func Shared() *Allocator {
	return shared
}

// Format renders a button id from a namespace and a sequence number. Both are
// forced negative regardless of their sign on input.
func Format(namespace, seq int64) string {
	return strconv.FormatInt(-abs(namespace), 10) + "-" + strconv.FormatInt(-abs(seq), 10)
}

// Parse splits an id produced by Format back into its positive namespace and
// sequence number.
func Parse(id string) (namespace, seq int64, err error) {
	if !strings.HasPrefix(id, "-") {
		return 0, 0, fmt.Errorf("%w: %q", ErrNotExtensionID, id)
	}
	i := strings.Index(id[1:], "-")
	if i < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrNotExtensionID, id)
	}
	nsPart, seqPart := id[:i+1], id[i+2:]
	ns, err := strconv.ParseInt(nsPart, 10, 64)
	if err != nil || ns >= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrNotExtensionID, id)
	}
	s, err := strconv.ParseInt(seqPart, 10, 64)
	if err != nil || s >= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrNotExtensionID, id)
	}
	return -ns, -s, nil
}

// IsExtensionID reports whether id has the shape produced by Format.
func IsExtensionID(id string) bool {
	_, _, err := Parse(id)
	return err == nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
