// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shellgei/gosh/syntax"
)

func anyOfLit(w *syntax.Word, vals ...string) string {
	if w == nil {
		return ""
	}
	lit := w.Lit()
	for _, val := range vals {
		if lit == val {
			return val
		}
	}
	return ""
}

// paramExp implements the BracedParam operations: plain expansion, length,
// indexing, slicing, search-and-replace and the :-, :=, :?, :+ family, as
// well as the prefix/suffix removal and case-folding operators.
func (cfg *Config) paramExp(pe *syntax.Parameter) (string, error) {
	oldParam := cfg.curParam
	cfg.curParam = pe
	defer func() { cfg.curParam = oldParam }()

	name := pe.Param.Value
	if rest, ok := strings.CutPrefix(name, "!"); ok && rest != "" {
		// ${!prefix*} and ${!prefix@} list the names of variables whose name
		// starts with prefix, rather than indirecting through a name.
		if suffix := rest[len(rest)-1]; suffix == '*' || suffix == '@' {
			prefix := rest[:len(rest)-1]
			var names []string
			cfg.Env.Each(func(n string, _ Variable) bool {
				if strings.HasPrefix(n, prefix) {
					names = append(names, n)
				}
				return true
			})
			sort.Strings(names)
			return strings.Join(names, " "), nil
		}
		// ${!name} indirection: name holds the name of the variable to use.
		ref := cfg.Env.Get(rest)
		if !ref.IsSet() {
			return "", fmt.Errorf("invalid indirect expansion")
		}
		if ref.Kind == NameRef {
			return ref.Str, nil
		}
		target := ref.String()
		if target == "" {
			return "", nil
		}
		name = target
	}
	var index *syntax.Word
	if pe.Ind != nil {
		index = &pe.Ind.Word
	}
	switch name {
	case "@", "*":
		index = &syntax.Word{Parts: []syntax.Subword{&syntax.Lit{Value: name}}}
	}

	vr := cfg.Env.Get(name)
	if cfg.NoUnset && !vr.IsSet() && name != "@" && name != "*" && pe.Exp == nil {
		return "", UnsetParameterError{Node: pe, Message: "unbound variable"}
	}
	set := vr.IsSet()

	str, err := cfg.varStr(vr, 0)
	if err != nil {
		return "", err
	}
	if index != nil {
		str, err = cfg.varInd(vr, index)
		if err != nil {
			return "", err
		}
	}

	slicePos := func(w syntax.Word) (int, error) {
		p, err := Arithm(cfg, &w)
		if err != nil {
			return 0, err
		}
		if p < 0 {
			p = len(str) + p
			if p < 0 {
				p = 0
			}
		} else if p > len(str) {
			p = len(str)
		}
		return p, nil
	}

	elems := []string{str}
	if anyOfLit(index, "@", "*") != "" {
		switch vr.Kind {
		case Indexed:
			elems = vr.List
		case Associative:
			elems = nil
			keys := sortedKeys(vr.Map)
			for _, k := range keys {
				elems = append(elems, vr.Map[k])
			}
		default:
			elems = nil
		}
	}

	switch {
	case pe.Length:
		n := len(elems)
		if anyOfLit(index, "@", "*") == "" {
			n = utf8.RuneCountInString(str)
		}
		str = strconv.Itoa(n)
	case pe.Slice != nil:
		if pe.Slice.Offset.Parts != nil {
			offset, err := slicePos(pe.Slice.Offset)
			if err != nil {
				return "", err
			}
			str = str[offset:]
		}
		if pe.Slice.Length.Parts != nil {
			length, err := slicePos(pe.Slice.Length)
			if err != nil {
				return "", err
			}
			if length < len(str) {
				str = str[:length]
			}
		}
	case pe.Repl != nil:
		orig, err := Pattern(cfg, &pe.Repl.Orig)
		if err != nil {
			return "", err
		}
		with, err := Literal(cfg, &pe.Repl.With)
		if err != nil {
			return "", err
		}
		n := 1
		if pe.Repl.All {
			n = -1
		}
		locs := findAllIndex(orig, str, n)
		buf := cfg.strBuilder()
		last := 0
		for _, loc := range locs {
			buf.WriteString(str[last:loc[0]])
			buf.WriteString(with)
			last = loc[1]
		}
		buf.WriteString(str[last:])
		str = buf.String()
	case pe.Exp != nil:
		arg, err := Literal(cfg, &pe.Exp.Word)
		if err != nil {
			return "", err
		}
		switch op := pe.Exp.Op; op {
		case syntax.SubstColAdd:
			if str == "" {
				break
			}
			fallthrough
		case syntax.SubstAdd:
			if set {
				str = arg
			}
		case syntax.SubstSub:
			if set {
				break
			}
			fallthrough
		case syntax.SubstColSub:
			if str == "" {
				str = arg
			}
		case syntax.SubstQuest:
			if set {
				break
			}
			fallthrough
		case syntax.SubstColQuest:
			if str == "" {
				return "", UnsetParameterError{Node: pe, Message: arg}
			}
		case syntax.SubstAssgn:
			if set {
				break
			}
			fallthrough
		case syntax.SubstColAssgn:
			if str == "" {
				if err := cfg.envSet(name, arg); err != nil {
					return "", err
				}
				str = arg
			}
		case syntax.RemSmallPrefix, syntax.RemLargePrefix,
			syntax.RemSmallSuffix, syntax.RemLargeSuffix:
			suffix := op == syntax.RemSmallSuffix || op == syntax.RemLargeSuffix
			large := op == syntax.RemLargePrefix || op == syntax.RemLargeSuffix
			for i, elem := range elems {
				elems[i] = removePattern(elem, arg, suffix, large)
			}
			str = strings.Join(elems, " ")
		case syntax.UpperFirst, syntax.UpperAll,
			syntax.LowerFirst, syntax.LowerAll:
			caseFunc := unicode.ToLower
			if op == syntax.UpperFirst || op == syntax.UpperAll {
				caseFunc = unicode.ToUpper
			}
			all := op == syntax.UpperAll || op == syntax.LowerAll

			expr, err := syntax.TranslatePattern(arg, false)
			if err != nil {
				return str, nil
			}
			rx := regexp.MustCompile(expr)
			for i, elem := range elems {
				rs := []rune(elem)
				for ri, r := range rs {
					if rx.MatchString(string(r)) {
						rs[ri] = caseFunc(r)
						if !all {
							break
						}
					}
				}
				elems[i] = string(rs)
			}
			str = strings.Join(elems, " ")
		default:
			return "", fmt.Errorf("unsupported parameter expansion operator: %v", op)
		}
	}
	return str, nil
}

func removePattern(str, pattern string, fromEnd, greedy bool) string {
	expr, err := syntax.TranslatePattern(pattern, greedy)
	if err != nil {
		return str
	}
	switch {
	case fromEnd && !greedy:
		expr = ".*(" + expr + ")$"
	case fromEnd:
		expr = "(" + expr + ")$"
	default:
		expr = "^(" + expr + ")"
	}
	rx := regexp.MustCompile(expr)
	if loc := rx.FindStringSubmatchIndex(str); loc != nil {
		str = str[:loc[2]] + str[loc[3]:]
	}
	return str
}

func (cfg *Config) varStr(vr Variable, depth int) (string, error) {
	if depth > maxNameRefDepth {
		return "", nil
	}
	if vr.Kind == NameRef {
		_, resolved := vr.Resolve(cfg.Env)
		return resolved.String(), nil
	}
	return vr.String(), nil
}

func (cfg *Config) varInd(vr Variable, idx *syntax.Word) (string, error) {
	switch vr.Kind {
	case NameRef:
		_, resolved := vr.Resolve(cfg.Env)
		return cfg.varInd(resolved, idx)
	case Indexed:
		switch anyOfLit(idx, "@", "*") {
		case "@":
			return strings.Join(vr.List, " "), nil
		case "*":
			buf := cfg.strBuilder()
			return cfg.ifsJoin(buf, vr.List), nil
		}
		n, err := Arithm(cfg, idx)
		if err != nil {
			return "", err
		}
		if n >= 0 && n < len(vr.List) {
			return vr.List[n], nil
		}
		return "", nil
	case Associative:
		if lit := anyOfLit(idx, "@", "*"); lit != "" {
			keys := sortedKeys(vr.Map)
			strs := make([]string, len(keys))
			for i, k := range keys {
				strs[i] = vr.Map[k]
			}
			if lit == "*" {
				buf := cfg.strBuilder()
				return cfg.ifsJoin(buf, strs), nil
			}
			return strings.Join(strs, " "), nil
		}
		key, err := Literal(cfg, idx)
		if err != nil {
			return "", err
		}
		return vr.Map[key], nil
	default:
		if vr.String() != "" {
			n, err := Arithm(cfg, idx)
			if err != nil {
				return "", err
			}
			if n == 0 {
				return vr.String(), nil
			}
		}
		return "", nil
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func findAllIndex(pattern, name string, n int) [][]int {
	expr, err := syntax.TranslatePattern(pattern, true)
	if err != nil {
		return nil
	}
	rx := regexp.MustCompile(expr)
	return rx.FindAllStringIndex(name, n)
}
