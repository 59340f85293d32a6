/*
Copyright 2026 The Nanosoldier Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package submission implements the trigger-phrase mini-language: a
// syntax-only parser that turns `name(args...; kwargs...)` into a
// {func, positional[], keyword{}} value without ever evaluating the
// argument expressions, plus per-job-type grammar validation that
// decides which argument shapes are acceptable.
//
// The parser never executes or interprets user input as code; it only
// recognizes a fixed set of literal and call-tree shapes. This mirrors
// prow's plugin trigger-comment regex matching, generalized from a
// fixed command set to an argument-carrying function call.
package submission

import (
	"fmt"
	"strings"
)

// Parsed is the {func, positional[], keyword{}} result of splitting a
// trigger phrase, with argument values stored as unevaluated source
// text (see the ast node Source() method).
type Parsed struct {
	Func     string
	Args     []string
	Kwargs   map[string]string
	ArgNodes []node
	KwNodes  map[string]node
}

// Parse extracts the single backtick-delimited function call from
// body (the trigger regex's full match) and parses its argument list.
// It never evaluates anything; every value is preserved as the source
// text of its literal or call-tree shape.
func Parse(body string) (*Parsed, error) {
	inner, err := backtickBody(body)
	if err != nil {
		return nil, err
	}

	name, argList, err := splitCall(inner)
	if err != nil {
		return nil, err
	}

	// ';' is an accepted separator equivalent to ',' (spec section 6).
	argList = strings.ReplaceAll(argList, ";", ",")

	elems, err := parseTuple(argList)
	if err != nil {
		return nil, err
	}

	p := &Parsed{
		Func:    name,
		Kwargs:  map[string]string{},
		KwNodes: map[string]node{},
	}

	seenKwarg := false
	for _, e := range elems {
		if kw, val, ok := asKwarg(e); ok {
			if _, dup := p.Kwargs[kw]; dup {
				return nil, fmt.Errorf("duplicate keyword argument %q", kw)
			}
			p.Kwargs[kw] = val.Source()
			p.KwNodes[kw] = val
			seenKwarg = true
			continue
		}
		if seenKwarg {
			return nil, fmt.Errorf("positional argument follows a keyword argument")
		}
		p.Args = append(p.Args, e.Source())
		p.ArgNodes = append(p.ArgNodes, e)
	}

	return p, nil
}

// backtickBody returns the substring between the first pair of
// backticks in body.
func backtickBody(body string) (string, error) {
	start := strings.IndexByte(body, '`')
	if start < 0 {
		return "", fmt.Errorf("no backtick-delimited submission found")
	}
	end := strings.IndexByte(body[start+1:], '`')
	if end < 0 {
		return "", fmt.Errorf("unterminated backtick-delimited submission")
	}
	return body[start+1 : start+1+end], nil
}

// splitCall splits "name(args)" into its name and argument list text,
// keeping the parentheses out of the returned argList.
func splitCall(s string) (name, argList string, err error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", "", fmt.Errorf("submission %q is not a function call", s)
	}
	if !strings.HasSuffix(s, ")") {
		return "", "", fmt.Errorf("submission %q does not end with a closing parenthesis", s)
	}
	name = strings.TrimSpace(s[:open])
	if name == "" {
		return "", "", fmt.Errorf("submission is missing a function name")
	}
	argList = s[open+1 : len(s)-1]
	return name, argList, nil
}
