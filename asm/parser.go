// This file is part of fc16 - https://github.com/db47h/fc16
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"io"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/db47h/fc16/vm"
)

const maxErrors = 10

// ErrAsm wraps errors returned by Assemble. Each entry points at the
// offending token.
type ErrAsm []struct {
	Pos scanner.Position
	Msg string
}

func (e ErrAsm) Error() string {
	var b strings.Builder
	for i, err := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Pos.String())
		b.WriteString(": ")
		b.WriteString(err.Msg)
	}
	return b.String()
}

func isIdentRune(ch rune, i int) bool {
	if ch == '"' && i == 0 {
		return false
	}
	return unicode.IsLetter(ch) || unicode.IsSymbol(ch) || unicode.IsPunct(ch) || unicode.IsDigit(ch)
}

// fnState is the function being assembled.
type fnState struct {
	f         *Function
	pos       scanner.Position
	blocks    [][]Operand
	cur       []Operand
	labels    map[string]int
	labelUses map[string]scanner.Position
	symUses   map[string]scanner.Position
	entry     int
}

func (s *fnState) blockID() int { return len(s.blocks) }

func (s *fnState) closeBlock() {
	s.blocks = append(s.blocks, s.cur)
	s.cur = nil
}

type parser struct {
	s         scanner.Scanner
	exe       *Executable
	errs      ErrAsm
	fn        *fnState
	cst       int // constant being defined, -1 if none, discard after a redefinition
	consts    map[string]int
	constUses map[string]scanner.Position
}

// discard marks the data of a rejected constant definition.
const discard = -2

func newParser() *parser {
	return &parser{
		exe:       NewExecutable(),
		cst:       -1,
		consts:    make(map[string]int),
		constUses: make(map[string]scanner.Position),
	}
}

func (p *parser) fail(pos scanner.Position, msg string) {
	if len(p.errs) < maxErrors {
		p.errs = append(p.errs, struct {
			Pos scanner.Position
			Msg string
		}{pos, msg})
	}
}

// next returns the next token, skipping comments.
func (p *parser) next() (tok rune, text string, pos scanner.Position) {
	for {
		tok = p.s.Scan()
		text, pos = p.s.TokenText(), p.s.Position
		if tok != scanner.Ident || text != "(" {
			return
		}
		for tok = p.s.Scan(); tok != scanner.EOF && (tok != scanner.Ident || p.s.TokenText() != ")"); tok = p.s.Scan() {
		}
		if tok == scanner.EOF {
			p.fail(pos, "unterminated comment")
			return tok, "", pos
		}
	}
}

func (p *parser) parse(name string, r io.Reader) {
	p.s.Init(r)
	p.s.Error = func(s *scanner.Scanner, msg string) {
		pos := s.Position
		if !pos.IsValid() {
			pos = s.Pos()
		}
		p.fail(pos, msg)
	}
	p.s.IsIdentRune = isIdentRune
	p.s.Mode = scanner.ScanIdents | scanner.ScanStrings
	p.s.Filename = name

	for tok, s, pos := p.next(); tok != scanner.EOF && len(p.errs) < maxErrors; tok, s, pos = p.next() {
		if tok == scanner.String {
			if p.cst == discard {
				continue
			}
			if p.cst < 0 {
				p.fail(pos, "unexpected string "+s)
				continue
			}
			str, err := strconv.Unquote(s)
			if err != nil {
				p.fail(pos, err.Error()+" "+s)
				continue
			}
			for _, r := range str {
				p.exe.consts[p.cst] = append(p.exe.consts[p.cst], Int(vm.Word(r)))
			}
			continue
		}
		if tok != scanner.Ident {
			p.fail(pos, "unexpected character "+strconv.QuoteRune(tok))
			continue
		}
		switch {
		case s[0] == ':' && len(s) > 1:
			p.cst = -1
			p.label(s[1:], pos)
		case s[0] == '.' && len(s) > 1 && !isNumber(s):
			p.cst = -1
			p.directive(s, pos)
		default:
			if op, ok := vm.OpcodeByName(s); ok {
				p.cst = -1
				p.instruction(op, pos)
				continue
			}
			if p.cst == discard {
				continue
			}
			if p.cst < 0 {
				p.fail(pos, "unknown instruction "+s)
				continue
			}
			if o, ok := p.operand(s, pos, true); ok {
				p.exe.consts[p.cst] = append(p.exe.consts[p.cst], o)
			}
		}
	}
	p.endFunction()
	p.resolveConstants()
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 32)
	return err == nil
}

func (p *parser) label(name string, pos scanner.Position) {
	fn := p.fn
	if fn == nil {
		p.fail(pos, "label outside of function: "+name)
		return
	}
	if _, ok := fn.labels[name]; ok {
		p.fail(pos, "label redefinition: "+name)
		return
	}
	if len(fn.cur) > 0 {
		fn.closeBlock()
	}
	fn.labels[name] = fn.blockID()
}

func (p *parser) int(what string) (int, bool) {
	tok, s, pos := p.next()
	if tok != scanner.Ident {
		p.fail(pos, what+": integer expected")
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		p.fail(pos, what+": invalid integer "+s)
		return 0, false
	}
	return n, true
}

func (p *parser) ident(what string) (string, scanner.Position, bool) {
	tok, s, pos := p.next()
	if tok != scanner.Ident {
		p.fail(pos, what+": name expected")
		return "", pos, false
	}
	return s, pos, true
}

func (p *parser) directive(d string, pos scanner.Position) {
	switch d {
	case ".func":
		p.endFunction()
		name, npos, ok := p.ident(d)
		if !ok {
			return
		}
		argc, ok := p.int(d + " " + name)
		if !ok {
			return
		}
		p.fn = &fnState{
			f:         NewFunction(name, argc),
			pos:       npos,
			labels:    make(map[string]int),
			labelUses: make(map[string]scanner.Position),
			symUses:   make(map[string]scanner.Position),
		}
	case ".local":
		name, npos, ok := p.ident(d)
		if !ok {
			return
		}
		size, ok := p.int(d + " " + name)
		if !ok {
			return
		}
		if p.fn == nil {
			p.fail(pos, ".local outside of function")
			return
		}
		if err := p.fn.f.AddSymbol(name, size); err != nil {
			p.fail(npos, err.Error())
		}
	case ".entry":
		if p.fn == nil {
			p.fail(pos, ".entry outside of function")
			return
		}
		p.fn.entry = p.fn.blockID()
	case ".const":
		name, npos, ok := p.ident(d)
		if !ok {
			return
		}
		if _, ok := p.consts[name]; ok {
			p.fail(npos, "constant redefinition: "+name)
			p.cst = discard
			return
		}
		p.cst = p.exe.AddConstant(nil)
		p.consts[name] = p.cst
	default:
		p.fail(pos, "unknown directive "+d)
	}
}

// isDest reports whether operand n of op is a destination register.
func isDest(op vm.Opcode, n int) bool {
	switch op {
	case vm.OpPop:
		return n == 0
	case vm.OpLoad, vm.OpLoadEx, vm.OpLoadf, vm.OpMov:
		return n == 1
	}
	return false
}

func (p *parser) instruction(op vm.Opcode, pos scanner.Position) {
	if p.fn == nil {
		p.fail(pos, "instruction outside of function: "+op.String())
		return
	}
	ops := []Operand{Op(op)}
	for n := 0; n < op.Operands(); n++ {
		tok, s, apos := p.next()
		if tok != scanner.Ident {
			p.fail(apos, op.String()+": missing operand")
			return
		}
		o, ok := p.operand(s, apos, false)
		if !ok {
			return
		}
		if isDest(op, n) && o.Kind != KindRegister {
			p.fail(apos, op.String()+": register expected: "+s)
			return
		}
		ops = append(ops, o)
	}
	p.fn.cur = append(p.fn.cur, ops...)
}

// operand parses an instruction operand or, if data is true, a constant data
// operand.
func (p *parser) operand(s string, pos scanner.Position, data bool) (Operand, bool) {
	if n, err := strconv.ParseInt(s, 0, 32); err == nil {
		if n >= -32767 && n <= 32767 {
			return Int(vm.Word(n)), true
		}
		return I32(int32(n)), true
	}
	if len(s) > 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		r, _, tail, err := strconv.UnquoteChar(s[1:len(s)-1], '\'')
		if err != nil || tail != "" {
			p.fail(pos, "invalid char literal "+s)
			return Operand{}, false
		}
		return Int(vm.Word(r)), true
	}
	switch s[0] {
	case '#':
		n, err := strconv.ParseInt(s[1:], 0, 32)
		if err != nil {
			p.fail(pos, "invalid int32 literal "+s)
			return Operand{}, false
		}
		return I32(int32(n)), true
	case '$':
		if len(s) == 1 {
			break
		}
		if _, ok := p.constUses[s[1:]]; !ok {
			p.constUses[s[1:]] = pos
		}
		return Operand{Kind: KindConstant, Name: s[1:], Int: -1}, true
	}
	if strings.ContainsAny(s, ".eE") && s != ".locals" && s != ".argc" {
		if f, err := strconv.ParseFloat(s, 32); err == nil {
			return F32(float32(f)), true
		}
	}
	if data {
		p.fail(pos, "invalid constant data "+s)
		return Operand{}, false
	}

	if r, ok := vm.RegisterByName(s); ok {
		return Reg(r), true
	}
	switch s {
	case ".locals":
		return Locals(), true
	case ".argc":
		return ArgCount(), true
	case "&.":
		return Block(ThisBlock), true
	}
	if len(s) > 1 {
		switch s[0] {
		case '@':
			return Fn(s[1:]), true
		case '&':
			if _, ok := p.fn.labelUses[s[1:]]; !ok {
				p.fn.labelUses[s[1:]] = pos
			}
			return Operand{Kind: KindBlock, Name: s[1:]}, true
		case '%':
			name, extra := s[1:], 0
			if i := strings.LastIndexAny(name, "+-"); i > 0 {
				if n, err := strconv.Atoi(name[i:]); err == nil {
					name, extra = name[:i], n
				}
			}
			if _, ok := p.fn.symUses[name]; !ok {
				p.fn.symUses[name] = pos
			}
			return Sym(name, extra), true
		case '^':
			n, err := strconv.Atoi(s[1:])
			if err != nil || n < 0 {
				p.fail(pos, "invalid argument index "+s)
				return Operand{}, false
			}
			return Arg(n), true
		}
	}
	p.fail(pos, "unknown operand "+s)
	return Operand{}, false
}

// endFunction resolves labels of the current function and adds it to the
// executable.
func (p *parser) endFunction() {
	fn := p.fn
	if fn == nil {
		return
	}
	p.fn = nil
	if len(fn.cur) > 0 || len(fn.blocks) == 0 || fn.blockID() <= fn.entry {
		fn.closeBlock()
	}
	for name := range fn.labels {
		for fn.labels[name] >= len(fn.blocks) {
			fn.closeBlock()
		}
	}
	for name, pos := range fn.labelUses {
		if _, ok := fn.labels[name]; !ok {
			p.fail(pos, "undefined label "+name)
		}
	}
	for name, pos := range fn.symUses {
		if _, ok := fn.f.Symbols.Offset(name); !ok {
			p.fail(pos, "undefined symbol "+name)
		}
	}
	for id, b := range fn.blocks {
		for k, o := range b {
			if o.Kind == KindBlock && o.Name != "" {
				b[k] = Block(fn.labels[o.Name])
			}
		}
		fn.f.AddBlock(b, id == fn.entry)
	}
	if err := p.exe.AddFn(fn.f); err != nil {
		p.fail(fn.pos, err.Error())
	}
}

func (p *parser) resolveConstants() {
	for name, pos := range p.constUses {
		if _, ok := p.consts[name]; !ok {
			p.fail(pos, "undefined constant "+name)
		}
	}
	fix := func(ops []Operand) {
		for k, o := range ops {
			if o.Kind == KindConstant && o.Name != "" {
				ops[k] = Const(p.consts[o.Name])
			}
		}
	}
	for _, c := range p.exe.consts {
		fix(c)
	}
	for _, f := range p.exe.fns {
		for _, b := range f.blocks {
			fix(b)
		}
	}
}

// Assemble compiles assembly read from the supplied io.Reader and returns the
// resulting executable and error if any.
//
// The name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
//
// The returned error, if not nil, can safely be cast to an ErrAsm value that
// will contain up to 10 entries.
func Assemble(name string, r io.Reader) (*Executable, error) {
	p := newParser()
	p.parse(name, r)
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return p.exe, nil
}
