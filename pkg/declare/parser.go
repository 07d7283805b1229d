// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package declare

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/consensys/go-declare/pkg/declare/expr"
	"github.com/consensys/go-declare/pkg/declare/template"
	"github.com/consensys/go-declare/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

// ParseError reports a malformed statement.  This is always fatal.
type ParseError struct {
	// Line number of the statement, counting from 1.
	Line int
	// Text of the statement.
	Text string
	// Msg describes the problem.
	Msg string
	// Err is the underlying error, if any.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("at line %d: %s\n%s", e.Line, e.Msg, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	dataLine           = regexp.MustCompile(`^.+:\s+.+$`)
	dataConstraintLine = regexp.MustCompile(`^.+\[.+\]\s*(\|[^|\n\r]*)+$`)
	bracketedArgs      = regexp.MustCompile(`\[\s*(.+?)\s*]`)
	argSeparator       = regexp.MustCompile(`,\s*`)
	valueSeparator     = regexp.MustCompile(`,\s*|\s+`)
)

// Default event variables of the activation and target of a data constraint.
const (
	ActivationVar = "A"
	TargetVar     = "B"
)

// ReadFile reads and parses a model from a given file.
func ReadFile(filename string) (*Model, error) {
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	return ParseFile(srcfile)
}

// Parse a model from a given string.
func Parse(text string) (*Model, error) {
	return ParseFile(source.NewSourceFile("model", []byte(text)))
}

// ParseFile parses a model from a given source file.  Statements are
// classified by shape, and then each class is parsed in turn so that, for
// example, constraints can refer to activities declared after them.
func ParseFile(srcfile *source.File) (*Model, error) {
	var (
		p     = &parser{model: NewModel()}
		lines = srcfile.Lines()
	)
	//
	for i := range lines {
		if err := p.classify(Statement{lines[i].Number(), strings.TrimSpace(lines[i].String())}); err != nil {
			return nil, err
		}
	}
	//
	for _, step := range []func() error{p.parseActivities, p.parseData, p.parseBindings, p.parseConstraints,
		p.parseDataConstraints, p.parseTraceAttributes} {
		if err := step(); err != nil {
			return nil, err
		}
	}
	//
	p.checkInterference()
	//
	return p.model, nil
}

type parser struct {
	model           *Model
	activities      []Statement
	traces          []Statement
	data            []Statement
	bindings        []Statement
	constraints     []Statement
	dataConstraints []Statement
}

func (p *parser) classify(s Statement) error {
	code := s.Code
	//
	switch {
	case code == "" || strings.HasPrefix(code, "/"):
		// skip
	case strings.HasPrefix(code, "activity "):
		p.activities = append(p.activities, s)
	case strings.HasPrefix(code, "trace "):
		p.traces = append(p.traces, s)
	case strings.HasPrefix(code, "bind "):
		p.bindings = append(p.bindings, s)
	case dataConstraintLine.MatchString(code):
		p.dataConstraints = append(p.dataConstraints, s)
	case strings.Contains(code, "["):
		p.constraints = append(p.constraints, s)
	case dataLine.MatchString(code):
		p.data = append(p.data, s)
	default:
		return errorf(s, "unrecognised statement")
	}
	//
	return nil
}

func (p *parser) parseActivities() error {
	for _, s := range p.activities {
		name := strings.TrimSpace(strings.TrimPrefix(s.Code, "activity "))
		//
		if p.model.HasActivity(name) {
			return errorf(s, "activity '%s' already declared", name)
		}
		//
		p.model.AddActivity(name)
	}
	//
	return nil
}

func (p *parser) parseData() error {
	for _, s := range p.data {
		name, rest, _ := strings.Cut(s.Code, ":")
		name, rest = strings.TrimSpace(name), strings.TrimSpace(rest)
		//
		if p.declared(name) {
			return errorf(s, "attribute '%s' already declared", name)
		}
		//
		kind, lo, hi, ok, err := parseRange(rest)
		//
		switch {
		case err != nil:
			return &ParseError{s.Line, s.Code, err.Error(), err}
		case !ok:
			p.model.EnumeratedData = append(p.model.EnumeratedData, EnumeratedData{name, splitValues(rest), true})
		case kind == "integer":
			p.model.IntegerData = append(p.model.IntegerData, IntegerData{name, int(lo), int(hi), true})
		default:
			p.model.FloatData = append(p.model.FloatData, FloatData{name, lo, hi, true})
		}
	}
	//
	return nil
}

func (p *parser) declared(name string) bool {
	_, e := p.model.Enumerated(name)
	//
	return e || p.model.IsNumeric(name)
}

func (p *parser) parseBindings() error {
	for _, s := range p.bindings {
		activity, rest, ok := strings.Cut(strings.TrimPrefix(s.Code, "bind "), ":")
		activity = strings.TrimSpace(activity)
		//
		if !ok {
			return errorf(s, "expected ':' in binding")
		} else if !p.model.HasActivity(activity) {
			return errorf(s, "unknown activity '%s'", activity)
		}
		//
		for _, attr := range splitValues(rest) {
			if !p.declared(attr) {
				return errorf(s, "unknown attribute '%s'", attr)
			}
			//
			p.model.Bind(activity, attr)
		}
	}
	//
	return nil
}

func (p *parser) parseConstraints() error {
	for _, s := range p.constraints {
		name, rest, _ := strings.Cut(s.Code, "[")
		body, _, ok := strings.Cut(rest, "]")
		//
		if !ok {
			return errorf(s, "expected ']'")
		}
		//
		var args []string
		//
		for _, arg := range strings.Split(body, ",") {
			if arg = strings.TrimSpace(arg); arg != "" {
				args = append(args, arg)
			}
		}
		//
		kind, err := p.parseTemplate(s, strings.TrimSpace(name), args)
		if err != nil {
			return err
		}
		//
		p.model.Constraints = append(p.model.Constraints, Constraint{kind, args, s, nil})
	}
	//
	return nil
}

func (p *parser) parseDataConstraints() error {
	for _, s := range p.dataConstraints {
		clauses := strings.Split(s.Code, "|")
		name, _, _ := strings.Cut(clauses[0], "[")
		m := bracketedArgs.FindStringSubmatch(clauses[0])
		//
		if m == nil {
			return errorf(s, "expected bracketed arguments")
		}
		//
		var args, vars []string
		//
		for i, arg := range argSeparator.Split(m[1], -1) {
			activity, variable := p.splitArgument(arg, i)
			args = append(args, activity)
			vars = append(vars, variable)
		}
		//
		kind, err := p.parseTemplate(s, strings.TrimSpace(name), args)
		if err != nil {
			return err
		}
		//
		fns, err := p.parseFunctions(s, kind, vars, clauses[1:])
		if err != nil {
			return err
		}
		//
		p.model.DataConstraints = append(p.model.DataConstraints, Constraint{kind, args, s, fns})
	}
	//
	return nil
}

// Split an argument "Activity var" into its activity and variable.  The
// variable is optional, defaulting to A for the first argument and B for the
// second, and the whole argument is taken as the activity when it names one.
func (p *parser) splitArgument(arg string, index int) (string, string) {
	var (
		words    = strings.Fields(arg)
		variable = ActivationVar
	)
	//
	if index > 0 {
		variable = TargetVar
	}
	//
	if len(words) < 2 || p.model.HasActivity(arg) {
		return strings.TrimSpace(arg), variable
	}
	//
	return strings.Join(words[:len(words)-1], " "), words[len(words)-1]
}

// Parse the conditions of a data constraint.  Function i is over the first i
// variables.  Missing conditions are true, and surplus ones are ignored.
func (p *parser) parseFunctions(s Statement, kind template.Kind, vars []string, clauses []string) ([]DataFunction, error) {
	var (
		fns   []DataFunction
		arity = 1
	)
	//
	if kind.IsBinary() {
		arity = 2
	}
	//
	for i := 0; i < arity; i++ {
		var (
			args = vars[:min(i+1, len(vars))]
			cond = ""
		)
		//
		if i < len(clauses) {
			cond = clauses[i]
		}
		//
		e, err := expr.Parse(cond)
		if err != nil {
			return nil, &ParseError{s.Line, s.Code, err.Error(), err}
		}
		//
		for _, v := range expr.Variables(e) {
			if !slices.Contains(args, v.Owner()) {
				return nil, errorf(s, "unknown variable '%s' in condition \"%s\"", v.Owner(), strings.TrimSpace(cond))
			} else if !p.declared(v.Attribute()) {
				return nil, errorf(s, "undefined data attribute %s", v.Attribute())
			}
		}
		//
		fns = append(fns, DataFunction{args, e})
	}
	//
	return fns, nil
}

func (p *parser) parseTemplate(s Statement, name string, args []string) (template.Kind, error) {
	kind, ok := template.Parse(name)
	//
	if !ok {
		return kind, errorf(s, "Constraint '%s' is not supported by Alloy. \nSupported constraints are: %s\n"+
			"If the name in error differs from the model source code, then some of the short names used might be "+
			"part of keywords (like the name of a constraint). Try to enclose such names in single quotes, 'like this'",
			name, strings.Join(template.Names(), ", "))
	}
	//
	switch {
	case kind.IsBinary() && len(args) != 2:
		return kind, errorf(s, "%s expects two activities", kind)
	case kind.HasCount() && (len(args) < 1 || len(args) > 2):
		return kind, errorf(s, "%s expects an activity and an optional count", kind)
	case !kind.IsBinary() && !kind.HasCount() && len(args) != 1:
		return kind, errorf(s, "%s expects one activity", kind)
	}
	//
	if kind.HasCount() && len(args) == 2 {
		if n, err := strconv.Atoi(args[1]); err != nil || n < 0 {
			return kind, errorf(s, "invalid count '%s'", args[1])
		}
		//
		args = args[:1]
	}
	//
	for _, a := range args {
		if !p.model.HasActivity(a) {
			return kind, errorf(s, "unknown activity '%s'", a)
		}
	}
	//
	return kind, nil
}

func (p *parser) parseTraceAttributes() error {
	for _, s := range p.traces {
		name, rest, ok := strings.Cut(strings.TrimPrefix(s.Code, "trace "), ":")
		name, rest = strings.TrimSpace(name), strings.TrimSpace(rest)
		//
		if !ok {
			return errorf(s, "expected ':' in trace attribute")
		}
		//
		kind, lo, hi, ok, err := parseRange(rest)
		//
		switch {
		case err != nil:
			return &ParseError{s.Line, s.Code, err.Error(), err}
		case !ok:
			p.model.EnumTraceAttributes = append(p.model.EnumTraceAttributes, EnumTraceAttribute{name, splitValues(rest)})
		case kind == "integer":
			p.model.IntTraceAttributes = append(p.model.IntTraceAttributes, IntTraceAttribute{name, int(lo), int(hi)})
		default:
			p.model.FloatTraceAttributes = append(p.model.FloatTraceAttributes, FloatTraceAttribute{name, lo, hi})
		}
	}
	//
	return nil
}

// Parse "integer between a and b" or "float between a and b".  Returns false
// (and no error) for anything else, which is then a list of values.
func parseRange(text string) (string, float64, float64, bool, error) {
	words := strings.Fields(text)
	//
	if len(words) < 2 || (words[0] != "integer" && words[0] != "float") || words[1] != "between" {
		return "", 0, 0, false, nil
	} else if len(words) != 5 || words[3] != "and" {
		return "", 0, 0, false, fmt.Errorf("expected '%s between MIN and MAX'", words[0])
	}
	//
	var (
		lo, lerr = parseBound(words[0], words[2])
		hi, herr = parseBound(words[0], words[4])
	)
	//
	switch {
	case lerr != nil:
		return "", 0, 0, false, lerr
	case herr != nil:
		return "", 0, 0, false, herr
	case lo > hi:
		return "", 0, 0, false, fmt.Errorf("empty range [%s,%s]", words[2], words[4])
	}
	//
	return words[0], lo, hi, true, nil
}

func parseBound(kind string, text string) (float64, error) {
	if kind == "integer" {
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0, fmt.Errorf("invalid integer '%s'", text)
		}
		//
		return float64(n), nil
	}
	//
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float '%s'", text)
	}
	//
	return f, nil
}

func splitValues(text string) []string {
	var values []string
	//
	for _, v := range valueSeparator.Split(strings.TrimSpace(text), -1) {
		if v != "" {
			values = append(values, v)
		}
	}
	//
	return values
}

func errorf(s Statement, format string, args ...any) *ParseError {
	return &ParseError{s.Line, s.Code, fmt.Sprintf(format, args...), nil}
}

// Words which user chosen names might be mistaken for.
var keywords = slices.Concat(template.Names(), []string{"activity", "integer", "float", "between", "trace", "bind",
	"is", "not", "in", "or", "and", "same", "different", "exist"})

// Interferences returns the given names containing a whole word which might be
// mistaken for a keyword.  Keywords are matched regardless of case.
func Interferences(names ...string) []string {
	var clashes []string
	//
	for _, name := range names {
		if slices.ContainsFunc(strings.Fields(name), isKeyword) {
			clashes = append(clashes, name)
		}
	}
	//
	return clashes
}

func isKeyword(word string) bool {
	return slices.ContainsFunc(keywords, func(k string) bool { return strings.EqualFold(k, word) })
}

func (p *parser) checkInterference() {
	var names []string
	//
	for _, a := range p.model.Activities {
		names = append(names, a.Name)
	}
	//
	for _, d := range p.model.EnumeratedData {
		names = append(names, d.Name)
		names = append(names, d.Values...)
	}
	//
	for _, name := range Interferences(names...) {
		log.Warnf("The name '%s' might be part of a reserved keyword. If other errors appear try to rename it "+
			"or use quote marks.", name)
	}
}
