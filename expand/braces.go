// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shellgei/gosh/syntax"
)

// expandBraces applies brace expansion to each word, turning a single word
// such as "foo{bar,baz}" into the two words "foobar" and "foobaz". Sequence
// braces such as "{1..3}" and "{a..c}" are expanded the same way.
//
// Malformed brace expressions are left untouched, exactly as [syntax.SplitBraces]
// leaves them as literal text.
func expandBraces(words []*syntax.Word) []*syntax.Word {
	var out []*syntax.Word
	for _, w := range words {
		split, _ := syntax.SplitBraces(w)
		out = append(out, expandWordBraces(split)...)
	}
	return out
}

func expandWordBraces(w *syntax.Word) []*syntax.Word {
	idx := -1
	for i, p := range w.Parts {
		if _, ok := p.(*syntax.Brace); ok {
			idx = i
			break
		}
	}
	if idx < 0 {
		return []*syntax.Word{w}
	}
	br := w.Parts[idx].(*syntax.Brace)
	before := w.Parts[:idx]
	after := w.Parts[idx+1:]

	var variants [][]syntax.Subword
	if br.Sequence {
		variants = sequenceVariants(br)
	} else {
		for _, elem := range br.Elems {
			variants = append(variants, elem.Parts)
		}
	}

	var out []*syntax.Word
	for _, mid := range variants {
		parts := make([]syntax.Subword, 0, len(before)+len(mid)+len(after))
		parts = append(parts, before...)
		parts = append(parts, mid...)
		parts = append(parts, after...)
		out = append(out, expandWordBraces(&syntax.Word{Parts: parts})...)
	}
	return out
}

func sequenceVariants(br *syntax.Brace) [][]syntax.Subword {
	startLit := br.Elems[0].Lit()
	endLit := br.Elems[1].Lit()
	incr := 1
	if len(br.Elems) == 3 {
		if n, err := strconv.Atoi(br.Elems[2].Lit()); err == nil && n != 0 {
			incr = n
		}
	}

	if br.Chars {
		start, end := rune(startLit[0]), rune(endLit[0])
		step := absInt(incr)
		var out [][]syntax.Subword
		if start <= end {
			for c := start; c <= end; c += rune(step) {
				out = append(out, []syntax.Subword{&syntax.Lit{Value: string(c)}})
			}
		} else {
			for c := start; c >= end; c -= rune(step) {
				out = append(out, []syntax.Subword{&syntax.Lit{Value: string(c)}})
			}
		}
		return out
	}

	start, err1 := strconv.Atoi(startLit)
	end, err2 := strconv.Atoi(endLit)
	if err1 != nil || err2 != nil {
		return [][]syntax.Subword{{&syntax.Lit{Value: fmt.Sprintf("{%s..%s}", startLit, endLit)}}}
	}
	width := 0
	if (strings.HasPrefix(startLit, "0") || strings.HasPrefix(startLit, "-0")) && len(startLit) > 1 {
		width = len(strings.TrimPrefix(startLit, "-"))
	}
	step := absInt(incr)
	var out [][]syntax.Subword
	if start <= end {
		for n := start; n <= end; n += step {
			out = append(out, []syntax.Subword{&syntax.Lit{Value: formatSeqNum(n, width)}})
		}
	} else {
		for n := start; n >= end; n -= step {
			out = append(out, []syntax.Subword{&syntax.Lit{Value: formatSeqNum(n, width)}})
		}
	}
	return out
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func formatSeqNum(n, width int) string {
	s := strconv.Itoa(n)
	if width == 0 {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for len(s) < width {
		s = "0" + s
	}
	if neg {
		s = "-" + s
	}
	return s
}
