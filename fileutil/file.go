// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package fileutil classifies filesystem entries as shell scripts or not,
// by extension and by shebang line, so a caller deciding whether to execute
// or skip a path doesn't have to read every candidate file's contents.
package fileutil

import (
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var (
	shebangRe = regexp.MustCompile(`^#![ \t]*/(?:usr/)?bin/(?:env[ \t]+)?(\S+)`)
	extRe     = regexp.MustCompile(`\.(sh|bash)$`)
)

// Shebang reports the interpreter name named by bs's shebang line, e.g.
// "bash" for both "#!/bin/bash" and "#!/usr/bin/env bash". It returns "" if
// bs doesn't open with a recognizable #!/.../bin/... line; a form-feed or
// newline between "#!" and the path doesn't count as the permitted
// whitespace, matching what a real shebang line tolerates.
func Shebang(bs []byte) string {
	m := shebangRe.FindSubmatch(bs)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// ScriptConfidence ranks how sure a caller can be that a path names a shell
// script without opening it, from ruled-out to certain.
type ScriptConfidence int

const (
	// ConfNotScript rules the entry out entirely: a directory, a symlink,
	// a dotfile, or a file whose extension belongs to some other language.
	ConfNotScript ScriptConfidence = iota

	// ConfIfShebang means the name alone doesn't decide it; the file has
	// no recognized extension, so its first line must be inspected with
	// Shebang to settle the question.
	ConfIfShebang

	// ConfIsScript means the name's extension (.sh or .bash) already
	// settles it.
	ConfIsScript
)

// classify holds the name/dir/symlink rules shared by CouldBeScript and
// CouldBeScript2, independent of which os package type supplied them.
func classify(name string, isDir, isSymlink bool) ScriptConfidence {
	switch {
	case isDir, isSymlink, name == "" || name[0] == '.':
		return ConfNotScript
	case extRe.MatchString(name):
		return ConfIsScript
	case strings.IndexByte(name, '.') > 0:
		return ConfNotScript // some other extension, e.g. ".py"
	default:
		return ConfIfShebang
	}
}

// CouldBeScript reports how likely info's file is to be a shell script,
// judging only by its name and mode.
//
// Deprecated: prefer CouldBeScript2, which works from a [fs.DirEntry] and
// so usually costs the caller fewer syscalls during a directory walk.
func CouldBeScript(info os.FileInfo) ScriptConfidence {
	return classify(info.Name(), info.IsDir(), info.Mode()&os.ModeSymlink != 0)
}

// CouldBeScript2 reports how likely a directory entry is to be a shell
// script, discarding directories, symlinks, dotfiles, and files carrying
// some other language's extension.
func CouldBeScript2(entry fs.DirEntry) ScriptConfidence {
	return classify(entry.Name(), entry.IsDir(), entry.Type()&os.ModeSymlink != 0)
}
