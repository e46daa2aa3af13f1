// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package shell

import (
	"os"
	"strings"

	"github.com/shellgei/gosh/expand"
	"github.com/shellgei/gosh/syntax"
)

// Expand performs shell expansion on s, using env to resolve variables.
// The expansion will apply to parameter expansions like $var and
// ${#var}, but also to arithmetic expansions like $((var + 3)). Brace
// expressions like foo{1,2,3} are left as they are, and no word splitting
// or pathname expansion is done.
//
// If env is nil, the current environment variables are used. Empty variables
// are treated as unset; to support variables which are set but empty, use
// [expand.Config] directly.
//
// Subshells like $(echo foo) aren't supported to avoid running arbitrary code.
// To support those, use an interpreter with [expand.Config].
//
// An error will be reported if the input string had invalid syntax.
func Expand(s string, env func(string) string) (string, error) {
	// There is no standalone "parse a single word" entry point any more, so
	// s is parsed as the body of a throwaway here-document; blanks and
	// newlines in it stay part of the one word.
	file, err := syntax.Parse([]byte(": <<GOSH_EXPAND_EOF\n"+s+"\nGOSH_EXPAND_EOF\n"), "", 0)
	if err != nil {
		return "", err
	}
	var word syntax.Word
	if len(file.Stmts) > 0 && len(file.Stmts[0].Redirs) > 0 {
		word = file.Stmts[0].Redirs[0].Hdoc
	}
	if env == nil {
		env = os.Getenv
	}
	cfg := &expand.Config{Env: expand.FuncEnviron(env)}
	out, err := expand.Document(cfg, &word)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(out, "\n"), nil
}

// Fields performs shell expansion on s, using env to resolve variables, and
// returns the separate fields that result from the expansion. It is similar to
// Expand, but word splitting is performed, and the resulting fields are not
// joined.
//
// If env is nil, the current environment variables are used. Empty variables
// are treated as unset; to support variables which are set but empty, use
// [expand.Config] directly.
//
// An error will be reported if the input string had invalid syntax.
func Fields(s string, env func(string) string) ([]string, error) {
	// Parsing s as the elements of a throwaway array assignment splits it
	// into words at unquoted blanks and newlines, without requiring a
	// standalone word-list parse entry point.
	file, err := syntax.Parse([]byte("GOSH_FIELDS=("+s+"\n)"), "", 0)
	if err != nil {
		return nil, err
	}
	var words []*syntax.Word
	if len(file.Stmts) > 0 && len(file.Stmts[0].Assigns) > 0 {
		parts := file.Stmts[0].Assigns[0].Value.Parts
		if len(parts) == 1 {
			if ae, ok := parts[0].(*syntax.ArrayExpr); ok {
				for i := range ae.List {
					words = append(words, &ae.List[i])
				}
			}
		}
	}
	if env == nil {
		env = os.Getenv
	}
	cfg := &expand.Config{Env: expand.FuncEnviron(env)}
	return expand.Fields(cfg, words...)
}
