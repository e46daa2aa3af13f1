// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"

	"github.com/shellgei/gosh/syntax"
)

// Config specifies the shell expansion behaviour that each of the package's
// functions should use. Env must be set before use; the other fields may be
// left zero.
type Config struct {
	// Env is used to fetch and iterate over a shell's variables.
	Env Environ

	// CommandSub is used to execute a command substitution, writing its
	// standard output to the given writer.
	CommandSub func(io.Writer, *syntax.CommandSub) error

	// ProcessSub is used to execute a process substitution. It is given
	// the process substitution node and must return the path that the
	// rest of the command line can use to reach it, such as a named pipe.
	ProcessSub func(*syntax.ProcessSub) (string, error)

	// ReadDir2 is used to read a directory's entries when expanding a
	// pathname pattern. When nil, pathname expansion is a no-op, as if
	// the caller had set the "noglob" shell option.
	ReadDir2 func(string) ([]fs.DirEntry, error)

	// GlobStar makes globbing treat a bare "**" component as matching
	// any number of directories, recursively.
	GlobStar bool
	// NoCaseGlob makes globbing case-insensitive.
	NoCaseGlob bool
	// NullGlob makes a pattern with no matches expand to zero fields
	// instead of the pattern itself.
	NullGlob bool
	// NoUnset makes expanding an unset parameter return an error.
	NoUnset bool

	bufferAlloc bytes.Buffer
	fieldAlloc  [4]fieldPart
	fieldsAlloc [4][]fieldPart

	ifs string
	// curParam points to the parameter expansion node we are currently
	// inside of, if any. Used for $LINENO-like context.
	curParam *syntax.Parameter
}

// UnsetParameterError is returned when "nounset" is enabled and an unset
// parameter is expanded.
type UnsetParameterError struct {
	Node    *syntax.Parameter
	Message string
}

func (u UnsetParameterError) Error() string {
	return fmt.Sprintf("%s: %s", u.Node.Param.Value, u.Message)
}

func (cfg *Config) strBuilder() *bytes.Buffer {
	b := &cfg.bufferAlloc
	b.Reset()
	return b
}

func (cfg *Config) envGet(name string) string {
	return cfg.Env.Get(name).String()
}

func (cfg *Config) envSet(name, value string) error {
	wenv, ok := cfg.Env.(WriteEnviron)
	if !ok {
		return fmt.Errorf("expand: read-only environment")
	}
	return wenv.Set(name, Variable{Set: true, Kind: String, Str: value})
}

func (cfg *Config) ifsJoin(buf *bytes.Buffer, strs []string) string {
	sep := ""
	if cfg.ifs != "" {
		sep = cfg.ifs[:1]
	}
	buf.Reset()
	for i, s := range strs {
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(s)
	}
	return buf.String()
}
