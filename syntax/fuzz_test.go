// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

//go:build go1.18

package syntax

import (
	"bytes"
	"os/exec"
	"testing"
)

func hasShell(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// FuzzQuote exercises Quote across all supported language variants,
// checking that whatever it returns (when it succeeds) parses back as a
// single word without error in the corresponding shell, when available.
func FuzzQuote(f *testing.F) {
	f.Add("")
	f.Add("foo")
	f.Add("foo bar")
	f.Add("$foo")
	f.Add("'foo'")
	f.Add("\n\t")
	f.Add("\x00")
	f.Add("\xff\x00")

	f.Fuzz(func(t *testing.T, s string) {
		for _, lang := range []LangVariant{LangBash, LangPOSIX, LangMirBSDKorn, LangZsh} {
			quoted, err := Quote(s, lang)
			if err != nil {
				continue
			}
			var shell string
			switch lang {
			case LangBash, LangPOSIX:
				shell = "bash"
			case LangMirBSDKorn:
				shell = "mksh"
			case LangZsh:
				shell = "zsh"
			}
			if !hasShell(shell) {
				continue
			}
			script := "printf '%s\\n' " + quoted
			cmd := exec.Command(shell, "-c", script)
			var stdout bytes.Buffer
			cmd.Stdout = &stdout
			if err := cmd.Run(); err != nil {
				t.Fatalf("%s rejected Quote(%q, %v) = %q: %v", shell, s, lang, quoted, err)
			}
		}
	})
}

// FuzzParsePrint checks that parsing and then printing a source string
// never panics, and that the printed output parses again without error,
// producing a structurally equivalent tree.
func FuzzParsePrint(f *testing.F) {
	for _, c := range fileTests {
		for _, in := range c.Strs {
			f.Add(in)
		}
	}
	for _, c := range fileTestsNoPrint {
		for _, in := range c.Strs {
			f.Add(in)
		}
	}

	f.Fuzz(func(t *testing.T, src string) {
		for _, mode := range []ParseMode{0, PosixConformant} {
			file, err := Parse([]byte(src), "", mode)
			if err != nil {
				continue
			}
			Simplify(file)

			var buf bytes.Buffer
			cfg := PrintConfig{Spaces: 0}
			if err := cfg.Fprint(&buf, file); err != nil {
				t.Fatalf("Fprint failed on a successfully parsed file: %v", err)
			}

			file2, err := Parse(buf.Bytes(), "", mode)
			if err != nil {
				t.Fatalf("re-parsing printed output failed: %v\noutput:\n%s", err, buf.String())
			}

			var numNodes1, numNodes2 int
			Inspect(file, func(Node) bool { numNodes1++; return true })
			Inspect(file2, func(Node) bool { numNodes2++; return true })
			if numNodes1 != numNodes2 {
				t.Fatalf("node count changed across a print/re-parse round trip: %d vs %d", numNodes1, numNodes2)
			}
		}
	})
}
