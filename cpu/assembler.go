// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// commentMarkers each start a comment running to the end of the line.
var commentMarkers = []string{"#", "//", ";"}

var (
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Assembler is a single pass assembler for the secure32 instruction set.
//
// Besides instructions, a line may carry `name:` labels, a `.equ NAME VALUE`
// equate, and `$(expr)` compile-time expressions over equates and labels.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to program counters.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing one for
// every following Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// Assemble assembles source text into instruction words and the
// index-aligned source line of each word.
func Assemble(source string) (codes []Code, lines []string, err error) {
	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	codes = prog.Codes()
	lines = prog.Lines()
	return
}

// stripComment removes any comment and surrounding whitespace.
func stripComment(text string) string {
	for _, marker := range commentMarkers {
		text, _, _ = strings.Cut(text, marker)
	}

	return strings.TrimSpace(text)
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v, _err := parseNumber(str)
		if _err != nil {
			// Ignore non-integer equates. They may be registers.
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	for key, pc := range asm.Label {
		pred[key] = starlark.MakeInt(pc)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	return
}

// parseLine splits a comment free line into instruction words,
// handling expressions, equates and labels.
func (asm *Assembler) parseLine(line string) (words []string, err error) {
	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			if err == nil {
				err = _err
			}
			return str
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	// .equ CONST VALUE
	if len(words) > 0 && words[0] == ".equ" {
		if len(words) != 3 || !reIdentifier.MatchString(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = nil
		return
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if !reIdentifier.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = len(asm.Opcode)
		words = words[1:]
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// parseWords encodes the words of a line into an opcode.
func (asm *Assembler) parseWords(words []string, lineno int, line string) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	op, _ := OpcodeOf(words[0])
	format := op.Format()
	jumps := format == FORMAT_J || format == FORMAT_B

	var label string
	value := func(word string) (v int64, err error) {
		v, err = parseNumber(word)
		if err == nil || !jumps || !reIdentifier.MatchString(word) {
			return
		}
		err = nil
		pc, ok := asm.Label[word]
		if ok {
			v = int64(pc)
			return
		}
		// Forward reference, linked after the final line.
		label = word
		return
	}

	code, err := encode(words[0], words[1:], value)
	if err != nil {
		return
	}

	asm.Opcode = append(asm.Opcode, Opcode{
		LineNo:    lineno,
		Line:      line,
		Words:     words,
		Code:      code,
		LinkLabel: label,
	})

	if asm.Verbose {
		log.Printf("asm: %02d: %08x %v", len(asm.Opcode)-1, uint32(code), code)
	}

	return
}

// Parse parses an input stream into a Program.
// The first failing line aborts the whole assembly.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Opcode = asm.Opcode[:0]
	if asm.Label == nil {
		asm.Label = make(map[string]int)
	}
	clear(asm.Label)
	asm.Equate = maps.Clone(asm.predefine)
	if asm.Equate == nil {
		asm.Equate = make(map[string]string)
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v", lineno, text)
		}

		line = stripComment(text)
		if len(line) == 0 {
			continue
		}

		var words []string
		words, err = asm.parseLine(line)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno, line)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		pc, ok := asm.Label[op.LinkLabel]
		if !ok {
			lineno = op.LineNo
			line = op.Line
			err = ErrLabelMissing(op.LinkLabel)
			return
		}
		op.Code = op.Code.Link(uint32(pc))
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}
