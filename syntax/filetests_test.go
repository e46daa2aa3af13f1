// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import "strings"

func lit(s string) *Lit { return &Lit{Value: s} }
func lits(strs ...string) []*Lit {
	l := make([]*Lit, 0, len(strs))
	for _, s := range strs {
		l = append(l, lit(s))
	}
	return l
}
func word(ps ...Subword) *Word { return &Word{Parts: ps} }
func litWord(s string) *Word   { return word(lit(s)) }
func litWords(strs ...string) []*Word {
	l := make([]*Word, 0, len(strs))
	for _, s := range strs {
		l = append(l, litWord(s))
	}
	return l
}

// litAssigns builds a list of Assign nodes from "name=value" pairs. A pair
// with no "=" is represented as an assignment with an empty value, mirroring
// what the parser produces for a bare "name=" assignment.
func litAssigns(pairs ...string) []*Assign {
	l := make([]*Assign, len(pairs))
	for i, pair := range pairs {
		name, val, ok := strings.Cut(pair, "=")
		if !ok {
			l[i] = &Assign{Name: lit(name)}
		} else {
			l[i] = &Assign{Name: lit(name), Value: *litWord(val)}
		}
	}
	return l
}

func call(words ...*Word) *CallExpr {
	args := make([]Word, len(words))
	for i, w := range words {
		args[i] = *w
	}
	return &CallExpr{Args: args}
}
func litCall(strs ...string) *CallExpr { return call(litWords(strs...)...) }

func stmt(cmd Command) *Stmt { return &Stmt{Cmd: cmd} }
func stmts(cmds ...Command) []*Stmt {
	l := make([]*Stmt, len(cmds))
	for i, cmd := range cmds {
		l[i] = stmt(cmd)
	}
	return l
}

func litStmt(strs ...string) *Stmt { return stmt(litCall(strs...)) }
func litStmts(strs ...string) []*Stmt {
	l := make([]*Stmt, len(strs))
	for i, s := range strs {
		l[i] = litStmt(s)
	}
	return l
}

func sglQuoted(s string) *SingleQuoted       { return &SingleQuoted{Value: s} }
func sglDQuoted(s string) *SingleQuoted      { return &SingleQuoted{Dollar: true, Value: s} }
func dblQuoted(ps ...Subword) *DoubleQuoted  { return &DoubleQuoted{Parts: ps} }
func dblDQuoted(ps ...Subword) *DoubleQuoted { return &DoubleQuoted{Dollar: true, Parts: ps} }
func block(sts ...*Stmt) *Block             { return &Block{Stmts: sts} }
func subshell(sts ...*Stmt) *Subshell       { return &Subshell{Stmts: sts} }

func arithmExp(e ArithmeticExpr) *Arithmetic         { return &Arithmetic{X: e} }
func arithmExpBr(e ArithmeticExpr) *Arithmetic       { return &Arithmetic{Bracket: true, X: e} }
func arithmCmd(e ArithmeticExpr) *ArithmeticCommand  { return &ArithmeticCommand{X: e} }
func parenArit(e ArithmeticExpr) *ParenArithm        { return &ParenArithm{X: e} }
func parenTest(e TestExpr) *ParenTest                { return &ParenTest{X: e} }

func cmdSubst(sts ...*Stmt) *CommandSub { return &CommandSub{Stmts: sts} }

func litParamExp(s string) *Parameter {
	return &Parameter{Short: true, Param: *lit(s)}
}
func paramExp(s string, length bool, rest any) *Parameter {
	p := &Parameter{Param: *lit(s), Length: length}
	switch x := rest.(type) {
	case nil:
	case *Index:
		p.Ind = x
	case *Slice:
		p.Slice = x
	case *Replace:
		p.Repl = x
	case *Expansion:
		p.Exp = x
	}
	return p
}

func letClause(exps ...ArithmeticExpr) *LetClause {
	return &LetClause{Exprs: exps}
}

func arrValues(words ...*Word) *ArrayExpr {
	ae := &ArrayExpr{}
	for _, w := range words {
		ae.List = append(ae.List, *w)
	}
	return ae
}

type fileTestCase struct {
	Strs       []string
	Bash, Posix *File
}

func fullProg(v any) *File {
	f := &File{}
	switch v := v.(type) {
	case *File:
		return v
	case []*Stmt:
		f.Stmts = v
		return f
	case *Stmt:
		f.Stmts = append(f.Stmts, v)
		return f
	case []Command:
		for _, cmd := range v {
			f.Stmts = append(f.Stmts, stmt(cmd))
		}
		return f
	case *Word:
		return fullProg(call(v))
	case Subword:
		return fullProg(word(v))
	case Command:
		return fullProg(stmt(v))
	case nil:
	default:
		panic(v)
	}
	return nil
}

func both(v any) *File {
	return fullProg(v)
}

// fileTests holds inputs whose parsed AST is identical under both the bash
// and the POSIX-conformant language variants.
var fileTests = []fileTestCase{
	{
		Strs:  []string{"", " ", "\t", "\n"},
		Bash:  &File{},
		Posix: &File{},
	},
	{
		Strs: []string{"foo", "foo ", " foo", "foo # bar"},
		Bash: both(litCall("foo")), Posix: both(litCall("foo")),
	},
	{
		Strs: []string{"foo bar", "foo  bar", "foo\tbar"},
		Bash: both(litCall("foo", "bar")), Posix: both(litCall("foo", "bar")),
	},
	{
		Strs: []string{"# comment\nfoo"},
		Bash: both(litCall("foo")), Posix: both(litCall("foo")),
	},
	{
		Strs: []string{"foo; bar", "foo ; bar", "foo;bar"},
		Bash: both(stmts(litCall("foo"), litCall("bar"))),
		Posix: both(stmts(litCall("foo"), litCall("bar"))),
	},
	{
		Strs: []string{"foo\nbar"},
		Bash: both(stmts(litCall("foo"), litCall("bar"))),
		Posix: both(stmts(litCall("foo"), litCall("bar"))),
	},
	{
		Strs: []string{"foo &", "foo&"},
		Bash: both(&Stmt{Cmd: litCall("foo"), Background: true}),
		Posix: both(&Stmt{Cmd: litCall("foo"), Background: true}),
	},
	{
		Strs: []string{"foo &\nbar"},
		Bash: both(stmts2(
			&Stmt{Cmd: litCall("foo"), Background: true},
			stmt(litCall("bar")),
		)),
		Posix: both(stmts2(
			&Stmt{Cmd: litCall("foo"), Background: true},
			stmt(litCall("bar")),
		)),
	},
	{
		Strs: []string{"'foo'"},
		Bash: both(word(sglQuoted("foo"))),
		Posix: both(word(sglQuoted("foo"))),
	},
	{
		Strs: []string{`"foo"`},
		Bash: both(word(dblQuoted(lit("foo")))),
		Posix: both(word(dblQuoted(lit("foo")))),
	},
	{
		Strs: []string{`"foo $bar"`},
		Bash: both(word(dblQuoted(lit("foo "), litParamExp("bar")))),
		Posix: both(word(dblQuoted(lit("foo "), litParamExp("bar")))),
	},
	{
		Strs:  []string{"$foo"},
		Bash:  both(word(litParamExp("foo"))),
		Posix: both(word(litParamExp("foo"))),
	},
	{
		Strs: []string{"${foo}"},
		Bash: both(word(&Parameter{Param: *lit("foo")})),
	},
	{
		Strs: []string{"${#foo}"},
		Bash: both(word(paramExp("foo", true, nil))),
		Posix: both(word(paramExp("foo", true, nil))),
	},
	{
		Strs: []string{"${foo:-bar}"},
		Bash: both(word(paramExp("foo", false, &Expansion{Op: SubstColSub, Word: *litWord("bar")}))),
		Posix: both(word(paramExp("foo", false, &Expansion{Op: SubstColSub, Word: *litWord("bar")}))),
	},
	{
		Strs: []string{"${foo#bar}"},
		Bash: both(word(paramExp("foo", false, &Expansion{Op: RemSmallPrefix, Word: *litWord("bar")}))),
		Posix: both(word(paramExp("foo", false, &Expansion{Op: RemSmallPrefix, Word: *litWord("bar")}))),
	},
	{
		Strs: []string{"${foo:2:3}"},
		Bash: both(word(paramExp("foo", false, &Slice{Offset: *litWord("2"), Length: *litWord("3")}))),
	},
	{
		Strs: []string{"${foo/bar/baz}"},
		Bash: both(word(paramExp("foo", false, &Replace{Orig: *litWord("bar"), With: *litWord("baz")}))),
	},
	{
		Strs: []string{"`foo`"},
		Bash: both(word(cmdSubst(litStmt("foo")))),
		Posix: both(word(cmdSubst(litStmt("foo")))),
	},
	{
		Strs: []string{"$(foo)"},
		Bash: both(word(cmdSubst(litStmt("foo")))),
		Posix: both(word(cmdSubst(litStmt("foo")))),
	},
	{
		Strs: []string{"$((1 + 2))"},
		Bash: both(word(arithmExp(&BinaryArithm{
			Op: Add, X: litWord("1"), Y: litWord("2"),
		}))),
		Posix: both(word(arithmExp(&BinaryArithm{
			Op: Add, X: litWord("1"), Y: litWord("2"),
		}))),
	},
	{
		Strs: []string{"((1 + 2))"},
		Bash: both(arithmCmd(&BinaryArithm{
			Op: Add, X: litWord("1"), Y: litWord("2"),
		})),
	},
	{
		Strs:  []string{"foo=bar", "foo=bar "},
		Bash:  both(&Stmt{Assigns: litAssigns("foo=bar")}),
		Posix: both(&Stmt{Assigns: litAssigns("foo=bar")}),
	},
	{
		Strs: []string{"foo=bar baz"},
		Bash: both(&Stmt{
			Cmd:     litCall("baz"),
			Assigns: litAssigns("foo=bar"),
		}),
		Posix: both(&Stmt{
			Cmd:     litCall("baz"),
			Assigns: litAssigns("foo=bar"),
		}),
	},
	{
		Strs: []string{"foo > bar", "foo >bar"},
		Bash: both(&Stmt{
			Cmd:    litCall("foo"),
			Redirs: []*Redirect{{Op: RdrOut, Word: *litWord("bar")}},
		}),
		Posix: both(&Stmt{
			Cmd:    litCall("foo"),
			Redirs: []*Redirect{{Op: RdrOut, Word: *litWord("bar")}},
		}),
	},
	{
		Strs: []string{"foo < bar"},
		Bash: both(&Stmt{
			Cmd:    litCall("foo"),
			Redirs: []*Redirect{{Op: RdrIn, Word: *litWord("bar")}},
		}),
		Posix: both(&Stmt{
			Cmd:    litCall("foo"),
			Redirs: []*Redirect{{Op: RdrIn, Word: *litWord("bar")}},
		}),
	},
	{
		Strs: []string{"foo >> bar"},
		Bash: both(&Stmt{
			Cmd:    litCall("foo"),
			Redirs: []*Redirect{{Op: AppOut, Word: *litWord("bar")}},
		}),
	},
	{
		Strs: []string{"foo | bar"},
		Bash: both(&BinaryCmd{
			Op: Pipe, X: litStmt("foo"), Y: litStmt("bar"),
		}),
		Posix: both(&BinaryCmd{
			Op: Pipe, X: litStmt("foo"), Y: litStmt("bar"),
		}),
	},
	{
		Strs: []string{"foo && bar"},
		Bash: both(&BinaryCmd{
			Op: AndStmt, X: litStmt("foo"), Y: litStmt("bar"),
		}),
		Posix: both(&BinaryCmd{
			Op: AndStmt, X: litStmt("foo"), Y: litStmt("bar"),
		}),
	},
	{
		Strs: []string{"foo || bar"},
		Bash: both(&BinaryCmd{
			Op: OrStmt, X: litStmt("foo"), Y: litStmt("bar"),
		}),
		Posix: both(&BinaryCmd{
			Op: OrStmt, X: litStmt("foo"), Y: litStmt("bar"),
		}),
	},
	{
		Strs: []string{"(foo)"},
		Bash: both(subshell(litStmt("foo"))),
		Posix: both(subshell(litStmt("foo"))),
	},
	{
		Strs: []string{"{ foo; }"},
		Bash: both(block(litStmt("foo"))),
		Posix: both(block(litStmt("foo"))),
	},
	{
		Strs: []string{"if foo; then bar; fi"},
		Bash: both(&IfClause{
			CondStmts: litStmts("foo"),
			ThenStmts: litStmts("bar"),
		}),
		Posix: both(&IfClause{
			CondStmts: litStmts("foo"),
			ThenStmts: litStmts("bar"),
		}),
	},
	{
		Strs: []string{"if foo; then bar; else baz; fi"},
		Bash: both(&IfClause{
			CondStmts: litStmts("foo"),
			ThenStmts: litStmts("bar"),
			ElseStmts: litStmts("baz"),
		}),
	},
	{
		Strs: []string{"while foo; do bar; done"},
		Bash: both(&WhileClause{
			CondStmts: litStmts("foo"),
			DoStmts:   litStmts("bar"),
		}),
		Posix: both(&WhileClause{
			CondStmts: litStmts("foo"),
			DoStmts:   litStmts("bar"),
		}),
	},
	{
		Strs: []string{"until foo; do bar; done"},
		Bash: both(&UntilClause{
			CondStmts: litStmts("foo"),
			DoStmts:   litStmts("bar"),
		}),
		Posix: both(&UntilClause{
			CondStmts: litStmts("foo"),
			DoStmts:   litStmts("bar"),
		}),
	},
	{
		Strs: []string{"for i in 1 2 3; do foo; done"},
		Bash: both(&ForClause{
			Loop:    &WordIter{Name: *lit("i"), List: litWords2("1", "2", "3")},
			DoStmts: litStmts("foo"),
		}),
		Posix: both(&ForClause{
			Loop:    &WordIter{Name: *lit("i"), List: litWords2("1", "2", "3")},
			DoStmts: litStmts("foo"),
		}),
	},
	{
		Strs: []string{"for ((i = 0; i < 3; i++)); do foo; done"},
		Bash: both(&ForClause{
			Loop: &CStyleLoop{
				Init: &BinaryArithm{Op: Assgn, X: litWord("i"), Y: litWord("0")},
				Cond: &BinaryArithm{Op: Lss, X: litWord("i"), Y: litWord("3")},
				Post: &UnaryArithm{Op: Inc, Post: true, X: litWord("i")},
			},
			DoStmts: litStmts("foo"),
		}),
	},
	{
		Strs: []string{"foo() { bar; }"},
		Bash: both(&FuncDecl{
			Name: *lit("foo"),
			Body: stmt(block(litStmt("bar"))),
		}),
		Posix: both(&FuncDecl{
			Name: *lit("foo"),
			Body: stmt(block(litStmt("bar"))),
		}),
	},
	{
		Strs: []string{"[[ -f foo ]]"},
		Bash: both(&TestClause{
			X: &UnaryTest{Op: TsRegFile, X: litWord("foo")},
		}),
	},
	{
		Strs: []string{"[[ foo == bar ]]"},
		Bash: both(&TestClause{
			X: &BinaryTest{Op: TsEqual, X: litWord("foo"), Y: litWord("bar")},
		}),
	},
	{
		Strs: []string{"declare foo=bar"},
		Bash: both(&DeclClause{Assigns: litAssigns("foo=bar")}),
	},
	{
		Strs: []string{"local foo=bar"},
		Bash: both(&DeclClause{Variant: "local", Assigns: litAssigns("foo=bar")}),
	},
	{
		Strs: []string{"eval foo"},
		Bash: both(&EvalClause{Stmt: litStmt("foo")}),
	},
	{
		Strs: []string{"let i++"},
		Bash: both(letClause(&UnaryArithm{Op: Inc, Post: true, X: litWord("i")})),
	},
	{
		Strs: []string{"coproc foo"},
		Bash: both(&CoprocClause{Stmt: litStmt("foo")}),
	},
	{
		Strs: []string{"foo=(1 2 3)"},
		Bash: both(&Stmt{
			Assigns: []*Assign{{
				Name:  lit("foo"),
				Value: *word(arrValues(litWord("1"), litWord("2"), litWord("3"))),
			}},
		}),
	},
	{
		Strs: []string{"*(foo)"},
		Bash: both(word(&ExtGlob{Op: GlobZeroOrMore, Pattern: *lit("foo")})),
	},
	{
		Strs: []string{"<(foo)"},
		Bash: both(word(&ProcessSub{Op: CmdIn, Stmts: litStmts("foo")})),
	},
}

// fileTestsNoPrint holds inputs whose parsed AST is checked but which are
// not expected to print back identically to their canonical first form.
var fileTestsNoPrint = []fileTestCase{
	{
		Strs: []string{"foo   bar", "foo \\\n\tbar"},
		Bash: both(litCall("foo", "bar")),
		Posix: both(litCall("foo", "bar")),
	},
	{
		Strs: []string{"case $i in\n1) foo ;;\n2) bar ;;\nesac"},
		Bash: both(&CaseClause{
			Word: *word(litParamExp("i")),
			List: []*PatternList{
				{Op: DblSemicolon, Patterns: litWords2("1"), Stmts: litStmts("foo")},
				{Op: DblSemicolon, Patterns: litWords2("2"), Stmts: litStmts("bar")},
			},
		}),
		Posix: both(&CaseClause{
			Word: *word(litParamExp("i")),
			List: []*PatternList{
				{Op: DblSemicolon, Patterns: litWords2("1"), Stmts: litStmts("foo")},
				{Op: DblSemicolon, Patterns: litWords2("2"), Stmts: litStmts("bar")},
			},
		}),
	},
	{
		Strs: []string{"function foo { bar; }"},
		Bash: both(&FuncDecl{
			BashStyle: true,
			Name:      *lit("foo"),
			Body:      stmt(block(litStmt("bar"))),
		}),
	},
}

func litWords2(strs ...string) []Word {
	l := make([]Word, 0, len(strs))
	for _, s := range strs {
		l = append(l, *litWord(s))
	}
	return l
}

func stmts2(sts ...*Stmt) []*Stmt { return sts }
