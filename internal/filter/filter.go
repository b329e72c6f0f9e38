// Package filter gates event paths through the optional
// include/exclude patterns of a watch spec.
package filter

import (
	"path/filepath"
	"regexp"

	. "github.com/black-desk/lib/go/errwrap"
)

// Chain evaluates a path against an optional include pattern and an
// optional exclude pattern. A nil pattern never vetoes.
type Chain struct {
	include *regexp.Regexp
	exclude *regexp.Regexp
}

// New compiles both patterns. Invalid patterns fail here, never at
// evaluation time.
func New(include, exclude string) (ret *Chain, err error) {
	defer Wrap(&err, "compile filter patterns")

	c := &Chain{}

	if include != "" {
		c.include, err = regexp.Compile(include)
		if err != nil {
			Wrap(&err, "include pattern %q", include)
			return
		}
	}

	if exclude != "" {
		c.exclude, err = regexp.Compile(exclude)
		if err != nil {
			Wrap(&err, "exclude pattern %q", exclude)
			return
		}
	}

	ret = c
	return
}

// MatchesName evaluates the patterns against the final path component.
func (c *Chain) MatchesName(path string) bool {
	if path == "" {
		return false
	}

	return c.matches(filepath.Base(path))
}

// MatchesFullPath evaluates the patterns against the whole path.
func (c *Chain) MatchesFullPath(path string) bool {
	if path == "" {
		return false
	}

	return c.matches(path)
}

func (c *Chain) matches(s string) bool {
	if c.include != nil && !c.include.MatchString(s) {
		return false
	}

	if c.exclude != nil && c.exclude.MatchString(s) {
		return false
	}

	return true
}
