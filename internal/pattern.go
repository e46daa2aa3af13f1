// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package internal

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shellgei/gosh/pattern"
)

// ExtendedPatternMatcher compiles pat (under mode) into a matcher function,
// working around the one extglob shape [pattern.Regexp] can't express as a
// single regexp on its own: a "!(pattern-list)" negation. mode must include
// [pattern.EntireString], since a partial negated match isn't meaningful.
func ExtendedPatternMatcher(pat string, mode pattern.Mode) (func(string) bool, error) {
	if mode&pattern.ExtendedOperators != 0 && mode&pattern.EntireString == 0 {
		panic("pattern: ExtendedOperators requires EntireString")
	}

	expr, err := pattern.Regexp(pat, mode)
	if err == nil {
		rx := regexp.MustCompile(expr)
		return rx.MatchString, nil
	}

	var negErr *pattern.NegExtGlobError
	if !errors.As(err, &negErr) {
		return nil, err
	}
	return negatedExtGlobMatcher(pat, negErr.Groups)
}

// negatedExtGlobMatcher builds a matcher for a pattern containing exactly
// one "!(pattern-list)" group: it checks the literal prefix/suffix around
// the group by hand, then negates a regexp match of whatever falls between
// them against the group's inner pattern-list (compiled as if it were
// "@(...)", since that's the one extglob operator with identical grouping
// semantics but no negation).
func negatedExtGlobMatcher(pat string, groups []pattern.NegExtGlobGroup) (func(string) bool, error) {
	if len(groups) != 1 {
		return nil, fmt.Errorf("multiple extglob !(...) groups are not supported yet")
	}
	g := groups[0]
	prefix, suffix := pat[:g.Start], pat[g.End:]
	if pattern.HasMeta(prefix, 0) || pattern.HasMeta(suffix, 0) {
		return nil, fmt.Errorf("extglob !(...) is only supported with a fixed prefix and suffix")
	}

	innerList := pat[g.Start+len("!(") : g.End-len(")")]
	expr, err := pattern.Regexp("@("+innerList+")", pattern.EntireString|pattern.ExtendedOperators)
	if err != nil {
		return nil, err
	}
	rx := regexp.MustCompile(expr)

	return func(name string) bool {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			return false
		}
		end := len(name) - len(suffix)
		if end < len(prefix) {
			return false // prefix and suffix claims overlap: no valid middle
		}
		return !rx.MatchString(name[len(prefix):end])
	}, nil
}
