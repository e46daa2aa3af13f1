// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"fmt"
	"testing"
)

func TestWalk(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{
		"*syntax.File":      false,
		"*syntax.Stmt":      false,
		"*syntax.CallExpr":  false,
		"*syntax.IfClause":  false,
		"*syntax.ForClause": false,
		"*syntax.BinaryCmd": false,
		"*syntax.Word":      false,
		"*syntax.Lit":       false,
		"*syntax.Parameter": false,
	}
	src := "foo=bar; if true; then for i in a b; do echo $i; done; fi; a | b"
	prog, err := Parse([]byte(src), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	Inspect(prog, func(node Node) bool {
		if node == nil {
			return false
		}
		tstr := fmt.Sprintf("%T", node)
		if _, ok := seen[tstr]; ok {
			seen[tstr] = true
		}
		return true
	})
	for tstr, tseen := range seen {
		if !tseen {
			t.Errorf("type not seen: %s", tstr)
		}
	}
}

type newNode struct{}

func (newNode) Pos() Pos { return 0 }
func (newNode) End() Pos { return 0 }

func TestWalkUnexpectedType(t *testing.T) {
	t.Parallel()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("did not panic")
		}
	}()
	Inspect(newNode{}, func(node Node) bool {
		return true
	})
}
