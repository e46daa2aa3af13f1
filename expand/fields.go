// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shellgei/gosh/syntax"
)

type fieldPart struct {
	val   string
	quote quoteLevel
}

type quoteLevel uint

const (
	quoteNone quoteLevel = iota
	quoteDouble
	quoteSingle
)

func (cfg *Config) prepareIFS() {
	vr := cfg.Env.Get("IFS")
	if !vr.IsSet() {
		cfg.ifs = " \t\n"
	} else {
		cfg.ifs = vr.String()
	}
}

func (cfg *Config) ifsRune(r rune) bool {
	for _, r2 := range cfg.ifs {
		if r == r2 {
			return true
		}
	}
	return false
}

func (cfg *Config) fieldJoin(parts []fieldPart) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0].val
	}
	buf := cfg.strBuilder()
	for _, part := range parts {
		buf.WriteString(part.val)
	}
	return buf.String()
}

// Literal expands a word as if it were a plain string, without performing
// field splitting or pathname expansion. It is used for contexts such as
// the right-hand side of a variable assignment.
func Literal(cfg *Config, word *syntax.Word) (string, error) {
	if word == nil {
		return "", nil
	}
	field, err := cfg.wordField(word.Parts, quoteDouble)
	if err != nil {
		return "", err
	}
	return cfg.fieldJoin(field), nil
}

// Document expands a word as the body of a here-document, which behaves like
// an unquoted literal expansion without pathname expansion or splitting.
func Document(cfg *Config, word *syntax.Word) (string, error) {
	if word == nil {
		return "", nil
	}
	field, err := cfg.wordField(word.Parts, quoteNone)
	if err != nil {
		return "", err
	}
	return cfg.fieldJoin(field), nil
}

// Pattern expands a word into a pattern ready to be used for globbing or
// extended pattern matching; characters that were quoted in the source are
// escaped so that they are matched literally.
func Pattern(cfg *Config, word *syntax.Word) (string, error) {
	field, err := cfg.wordField(word.Parts, quoteSingle)
	if err != nil {
		return "", err
	}
	buf := cfg.strBuilder()
	for _, part := range field {
		if part.quote > quoteNone {
			buf.WriteString(syntax.QuotePattern(part.val))
		} else {
			buf.WriteString(part.val)
		}
	}
	return buf.String(), nil
}

// Fields expands a number of words as if they were arguments to a command,
// performing brace expansion, tilde expansion, parameter and command
// substitution, arithmetic expansion, field splitting, pathname expansion
// and quote removal in that order.
func Fields(cfg *Config, words ...*syntax.Word) ([]string, error) {
	cfg.prepareIFS()

	fields := make([]string, 0, len(words))
	dir := cfg.envGet("PWD")
	for _, bword := range expandBraces(words) {
		wfields, err := cfg.wordFields(bword.Parts)
		if err != nil {
			return nil, err
		}
		for _, field := range wfields {
			path, doGlob := cfg.escapedGlobField(field)
			var matches []string
			if doGlob && cfg.ReadDir2 != nil {
				matches = cfg.glob(dir, path)
			}
			if len(matches) == 0 {
				if doGlob && cfg.NullGlob {
					continue
				}
				fields = append(fields, cfg.fieldJoin(field))
				continue
			}
			fields = append(fields, matches...)
		}
	}
	return fields, nil
}

func (cfg *Config) escapedGlobField(parts []fieldPart) (escaped string, glob bool) {
	buf := cfg.strBuilder()
	for _, part := range parts {
		if part.quote > quoteNone {
			buf.WriteString(syntax.QuotePattern(part.val))
			continue
		}
		buf.WriteString(part.val)
		if syntax.HasPattern(part.val) {
			glob = true
		}
	}
	if glob {
		escaped = buf.String()
	}
	return escaped, glob
}

func (cfg *Config) wordField(wps []syntax.Subword, ql quoteLevel) ([]fieldPart, error) {
	var field []fieldPart
	var err error
	for i, wp := range wps {
		switch x := wp.(type) {
		case *syntax.Lit:
			s := x.Value
			if i == 0 {
				s = cfg.expandUser(s)
			}
			if ql == quoteDouble && strings.Contains(s, "\\") {
				s = unescapeDouble(s)
			}
			field = append(field, fieldPart{val: s})
		case *syntax.SingleQuoted:
			fp := fieldPart{quote: quoteSingle, val: x.Value}
			if x.Dollar {
				fp.val, _, err = Format(cfg, fp.val, nil)
				if err != nil {
					return nil, err
				}
			}
			field = append(field, fp)
		case *syntax.DoubleQuoted:
			parts, err := cfg.wordField(x.Parts, quoteDouble)
			if err != nil {
				return nil, err
			}
			for _, part := range parts {
				part.quote = quoteDouble
				field = append(field, part)
			}
		case *syntax.Parameter:
			val, err := cfg.paramExp(x)
			if err != nil {
				return nil, err
			}
			field = append(field, fieldPart{val: val})
		case *syntax.CommandSub:
			val, err := cfg.cmdSubst(x)
			if err != nil {
				return nil, err
			}
			field = append(field, fieldPart{val: val})
		case *syntax.ProcessSub:
			val, err := cfg.procSubst(x)
			if err != nil {
				return nil, err
			}
			field = append(field, fieldPart{val: val})
		case *syntax.Arithmetic:
			n, err := Arithm(cfg, x.X)
			if err != nil {
				return nil, err
			}
			field = append(field, fieldPart{val: strconv.Itoa(n)})
		case *syntax.ExtGlob:
			field = append(field, fieldPart{val: x.Op.String() + x.Pattern.Value + ")"})
		default:
			return nil, fmt.Errorf("unhandled word part: %T", x)
		}
	}
	return field, nil
}

func (cfg *Config) cmdSubst(cs *syntax.CommandSub) (string, error) {
	if cfg.CommandSub == nil {
		return "", nil
	}
	buf := cfg.strBuilder()
	if err := cfg.CommandSub(buf, cs); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func (cfg *Config) procSubst(ps *syntax.ProcessSub) (string, error) {
	if cfg.ProcessSub == nil {
		return "", fmt.Errorf("process substitution is not supported")
	}
	return cfg.ProcessSub(ps)
}

func (cfg *Config) wordFields(wps []syntax.Subword) ([][]fieldPart, error) {
	var fields [][]fieldPart
	var curField []fieldPart
	allowEmpty := false
	flush := func() {
		if len(curField) == 0 {
			return
		}
		fields = append(fields, curField)
		curField = nil
	}
	splitAdd := func(val string) {
		for i, field := range strings.FieldsFunc(val, cfg.ifsRune) {
			if i > 0 {
				flush()
			}
			curField = append(curField, fieldPart{val: field})
		}
	}
	for i, wp := range wps {
		switch x := wp.(type) {
		case *syntax.Lit:
			s := x.Value
			if i == 0 {
				s = cfg.expandUser(s)
			}
			if strings.Contains(s, "\\") {
				s = unescapeBackslash(s)
			}
			curField = append(curField, fieldPart{val: s})
		case *syntax.SingleQuoted:
			allowEmpty = true
			fp := fieldPart{quote: quoteSingle, val: x.Value}
			if x.Dollar {
				var err error
				fp.val, _, err = Format(cfg, fp.val, nil)
				if err != nil {
					return nil, err
				}
			}
			curField = append(curField, fp)
		case *syntax.DoubleQuoted:
			if len(x.Parts) == 1 {
				if pe, ok := x.Parts[0].(*syntax.Parameter); ok {
					if elems, ok := cfg.quotedElems(pe); ok {
						if len(elems) > 0 {
							allowEmpty = true
						}
						for i, elem := range elems {
							if i > 0 {
								flush()
							}
							curField = append(curField, fieldPart{quote: quoteDouble, val: elem})
						}
						continue
					}
				}
			}
			allowEmpty = true
			parts, err := cfg.wordField(x.Parts, quoteDouble)
			if err != nil {
				return nil, err
			}
			for _, part := range parts {
				part.quote = quoteDouble
				curField = append(curField, part)
			}
		case *syntax.Parameter:
			val, err := cfg.paramExp(x)
			if err != nil {
				return nil, err
			}
			splitAdd(val)
		case *syntax.CommandSub:
			val, err := cfg.cmdSubst(x)
			if err != nil {
				return nil, err
			}
			splitAdd(val)
		case *syntax.ProcessSub:
			val, err := cfg.procSubst(x)
			if err != nil {
				return nil, err
			}
			curField = append(curField, fieldPart{val: val})
		case *syntax.Arithmetic:
			n, err := Arithm(cfg, x.X)
			if err != nil {
				return nil, err
			}
			curField = append(curField, fieldPart{val: strconv.Itoa(n)})
		case *syntax.ExtGlob:
			curField = append(curField, fieldPart{val: x.Op.String() + x.Pattern.Value + ")"})
		default:
			return nil, fmt.Errorf("unhandled word part: %T", x)
		}
	}
	flush()
	if allowEmpty && len(fields) == 0 {
		fields = append(fields, curField)
	}
	return fields, nil
}

// quotedElems reports whether a parameter expansion is exactly ${@} or
// ${name[@]}, returning its elements unsplit as separate fields.
func (cfg *Config) quotedElems(pe *syntax.Parameter) ([]string, bool) {
	if pe == nil || strings.HasPrefix(pe.Param.Value, "!") || pe.Length ||
		pe.Slice != nil || pe.Repl != nil || pe.Exp != nil {
		return nil, false
	}
	if pe.Param.Value != "@" {
		if pe.Ind == nil || pe.Ind.Word.Lit() != "@" {
			return nil, false
		}
	}
	vr := cfg.Env.Get(pe.Param.Value)
	if vr.Kind != Indexed {
		return nil, false
	}
	return vr.List, true
}

func (cfg *Config) expandUser(field string) string {
	if len(field) == 0 || field[0] != '~' {
		return field
	}
	return expandTilde(cfg, field)
}

func unescapeDouble(s string) string {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\n':
				i++
				continue
			case '"', '\\', '$', '`':
				continue
			}
		}
		buf.WriteByte(b)
	}
	return buf.String()
}

func unescapeBackslash(s string) string {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\\' && i+1 < len(s) {
			i++
			b = s[i]
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
