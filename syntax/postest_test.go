// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"reflect"
	"strings"
	"testing"
)

// checkNewlines verifies that lines holds the byte offset of the start of
// every line in src, as produced by the parser and consumed by File.Position.
func checkNewlines(tb testing.TB, src string, lines []int) {
	tb.Helper()
	if len(lines) == 0 {
		tb.Fatalf("lines must never be empty")
	}
	if lines[0] != 0 {
		tb.Fatalf("lines[0] must always be 0, got %d", lines[0])
	}
	want := []int{0}
	for i, b := range src {
		if b == '\n' {
			want = append(want, i+1)
		}
	}
	if strings.Count(src, "\n") != len(want)-1 {
		tb.Fatalf("inconsistent newline count")
	}
	got := lines
	if len(got) != len(want) {
		tb.Fatalf("Lines mismatch in %q\nwant: %v\ngot:  %v", src, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			tb.Fatalf("Lines mismatch in %q\nwant: %v\ngot:  %v", src, want, got)
		}
	}
}

var posType = reflect.TypeOf(Pos(0))

// clearPosRecurse zeroes every Pos field found within node, so that the
// result can be compared via reflect.DeepEqual against a literal AST that
// was built without caring about source positions.
func clearPosRecurse(tb testing.TB, src string, node Node) {
	tb.Helper()
	v := reflect.ValueOf(node)
	clearPosValue(v, make(map[uintptr]bool))
}

func clearPosValue(v reflect.Value, seen map[uintptr]bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return
		}
		if v.Kind() == reflect.Ptr {
			ptr := v.Pointer()
			if seen[ptr] {
				return
			}
			seen[ptr] = true
		}
		clearPosValue(v.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			f := v.Field(i)
			if f.Type() == posType {
				if f.CanSet() {
					f.Set(reflect.Zero(posType))
				}
				continue
			}
			clearPosValue(f, seen)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			clearPosValue(v.Index(i), seen)
		}
	}
}
