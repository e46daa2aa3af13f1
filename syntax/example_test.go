// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax_test

import (
	"fmt"
	"os"

	"github.com/shellgei/gosh/syntax"
)

func Example() {
	f, err := syntax.Parse([]byte("{ foo; bar; }"), "", 0)
	if err != nil {
		return
	}
	syntax.Fprint(os.Stdout, f)
	// Output:
	// {
	//	foo
	//	bar
	// }
}

func ExampleWord() {
	f, err := syntax.Parse([]byte("echo foo${bar}'baz'"), "", 0)
	if err != nil {
		return
	}

	args := f.Stmts[0].Cmd.(*syntax.CallExpr).Args
	for i, word := range args {
		fmt.Printf("Word number %d:\n", i)
		for _, part := range word.Parts {
			fmt.Printf("%T\n", part)
		}
		fmt.Println()
	}

	// Output:
	// Word number 0:
	// *syntax.Lit
	//
	// Word number 1:
	// *syntax.Lit
	// *syntax.Parameter
	// *syntax.SingleQuoted
}

func ExampleCommand() {
	f, err := syntax.Parse([]byte("echo foo; if x; then y; fi; foo | bar"), "", 0)
	if err != nil {
		return
	}

	for i, stmt := range f.Stmts {
		fmt.Printf("Cmd %d: %T\n", i, stmt.Cmd)
	}

	// Output:
	// Cmd 0: *syntax.CallExpr
	// Cmd 1: *syntax.IfClause
	// Cmd 2: *syntax.BinaryCmd
}

func ExampleParse_options() {
	src := []byte("for ((i = 0; i < 5; i++)); do echo $i >f; done")

	// LangBash is the default.
	f, err := syntax.Parse(src, "", 0)
	fmt.Println(err)

	// Parsing fails under PosixConformant mode.
	_, err = syntax.Parse(src, "", syntax.PosixConformant)
	fmt.Println(err)

	syntax.Fprint(os.Stdout, f)

	// Output:
	// <nil>
	// 1:1: "for" must be followed by a literal
	// for ((i = 0; i < 5; i++)); do echo $i >f; done
}
