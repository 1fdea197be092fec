package search

import (
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PredicateKind enumerates the leaf tests.
type PredicateKind int

const (
	PredicateName PredicateKind = iota
	PredicateTypeMask
	PredicateRegex
	PredicateAll
)

// typeChars lists the accepted --type characters.
const typeChars = "bcdfpls"

// Predicate is a leaf test evaluated against a single directory entry.
// Build one with NameTest, TypeTest, RegexTest or AllTest.
type Predicate struct {
	kind  PredicateKind
	value string
	re    *regexp.Regexp
}

// NameTest matches entries whose base name equals name exactly.
func NameTest(name string) Predicate {
	return Predicate{kind: PredicateName, value: name}
}

// TypeTest matches entries having every file type listed in mask.
func TypeTest(mask string) (Predicate, error) {
	if mask == "" {
		return Predicate{}, fmt.Errorf("%w: empty mask", ErrInvalidTypeMask)
	}
	for _, r := range mask {
		if !strings.ContainsRune(typeChars, r) {
			return Predicate{}, fmt.Errorf("%w: %q is not one of %s", ErrInvalidTypeMask, r, typeChars)
		}
	}
	return Predicate{kind: PredicateTypeMask, value: mask}, nil
}

// RegexTest matches entries whose base name contains a match of pattern.
func RegexTest(pattern string) (Predicate, error) {
	re, err := regexp.Compile(norm.NFC.String(pattern))
	if err != nil {
		return Predicate{}, fmt.Errorf("%w %q: %w", ErrInvalidRegex, pattern, err)
	}
	return Predicate{kind: PredicateRegex, value: pattern, re: re}, nil
}

// AllTest matches every entry. Unlike the other tests it never stops the
// walk at a matching directory.
func AllTest() Predicate {
	return Predicate{kind: PredicateAll}
}

// Kind returns the variant of the predicate.
func (p Predicate) Kind() PredicateKind { return p.kind }

// Value returns the operand the predicate was built from.
func (p Predicate) Value() string { return p.value }

// String renders the predicate the way it is written in an expression.
func (p Predicate) String() string {
	switch p.kind {
	case PredicateName:
		return "--name " + p.value
	case PredicateTypeMask:
		return "--type " + p.value
	case PredicateRegex:
		return "--regex " + p.value
	case PredicateAll:
		return "--all"
	default:
		return fmt.Sprintf("Predicate(%d)", int(p.kind))
	}
}

// Evaluate reports whether an entry named name with type bits mode passes
// the test. mode only needs the type bits (fs.ModeType).
func (p Predicate) Evaluate(name string, mode fs.FileMode, policy SymlinkPolicy) bool {
	switch p.kind {
	case PredicateName:
		return name == p.value
	case PredicateTypeMask:
		for _, r := range p.value {
			if !hasType(r, mode, policy) {
				return false
			}
		}
		return true
	case PredicateRegex:
		return p.re != nil && p.re.MatchString(norm.NFC.String(name))
	case PredicateAll:
		return true
	default:
		panic(fmt.Sprintf("rfind: unhandled predicate kind %d", int(p.kind)))
	}
}

// hasType reports whether mode carries the file type named by c.
func hasType(c rune, mode fs.FileMode, policy SymlinkPolicy) bool {
	switch c {
	case 'b':
		return mode&fs.ModeDevice != 0 && mode&fs.ModeCharDevice == 0
	case 'c':
		return mode&fs.ModeCharDevice != 0
	case 'd':
		return mode.IsDir()
	case 'f':
		return mode.IsRegular()
	case 'p':
		return mode&fs.ModeNamedPipe != 0
	case 'l':
		// A followed link is reported as its target, never as a link.
		return mode&fs.ModeSymlink != 0 && policy != SymlinkFollow
	case 's':
		return mode&fs.ModeSocket != 0
	default:
		return false
	}
}
