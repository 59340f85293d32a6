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

package submission

import (
	"fmt"

	"github.com/nanosoldier/bot/pkg/joberror"
)

var benchmarkKwargs = map[string]bool{"vs": true, "skipbuild": true, "isdaily": true}

var pkgevalKwargs = map[string]bool{
	"vs": true, "isdaily": true, "configuration": true, "vs_configuration": true, "use_blacklist": true,
}

// ValidateBenchmark enforces spec section 4.2's runbenchmarks grammar:
// exactly one positional argument shaped as ALL, a string literal, or
// a whitelisted not/and/or/call expression tree over ALL/identifier/
// string leaves; keyword arguments drawn only from benchmarkKwargs.
func ValidateBenchmark(p *Parsed) error {
	if err := checkKwargs(p, benchmarkKwargs); err != nil {
		return err
	}
	if len(p.ArgNodes) != 1 {
		return joberror.Submissionf("runbenchmarks takes exactly one positional argument (a tag predicate), got %d", len(p.ArgNodes))
	}
	if err := checkPredicateShape(p.ArgNodes[0]); err != nil {
		return joberror.Submissionf("tag predicate rejected: %v", err)
	}
	return nil
}

// ValidateRunTests enforces spec section 4.2's runtests grammar: zero
// or one positional argument shaped as ALL, a string literal, or a
// vector literal of string literals; keyword arguments drawn only from
// pkgevalKwargs, with configuration/vs_configuration further
// restricted to flat literal tuples.
func ValidateRunTests(p *Parsed) error {
	if err := checkKwargs(p, pkgevalKwargs); err != nil {
		return err
	}
	if len(p.ArgNodes) > 1 {
		return joberror.Submissionf("runtests takes at most one positional argument (a package selection), got %d", len(p.ArgNodes))
	}
	if len(p.ArgNodes) == 1 {
		if err := checkPackageSelectionShape(p.ArgNodes[0]); err != nil {
			return joberror.Submissionf("package selection rejected: %v", err)
		}
	}
	for _, kw := range []string{"configuration", "vs_configuration"} {
		if n, ok := p.KwNodes[kw]; ok {
			if err := checkConfigurationShape(n); err != nil {
				return joberror.Submissionf("%s rejected: %v", kw, err)
			}
		}
	}
	return nil
}

func checkKwargs(p *Parsed, allowed map[string]bool) error {
	for k := range p.Kwargs {
		if !allowed[k] {
			return joberror.Submissionf("keyword argument %q is not permitted here", k)
		}
	}
	return nil
}

// checkPredicateShape is a syntax-only check: every node head must be
// one of {not, and, or, call} and every leaf must be ALL, a bare
// identifier, or a string literal. This exists solely to deny
// server-side evaluation of arbitrary code; it never inspects what the
// predicate actually selects.
func checkPredicateShape(n node) error {
	switch v := n.(type) {
	case identNode, stringNode:
		return nil
	case callNode:
		switch v.head {
		case "not", "and", "or", "call":
			for _, a := range v.args {
				if err := checkPredicateShape(a); err != nil {
					return err
				}
			}
			return nil
		default:
			return fmt.Errorf("call head %q is not one of not/and/or/call", v.head)
		}
	default:
		return fmt.Errorf("unrecognized predicate shape")
	}
}

func checkPackageSelectionShape(n node) error {
	switch v := n.(type) {
	case identNode, stringNode:
		return nil
	case vectorNode:
		for _, e := range v.elems {
			if _, ok := e.(stringNode); !ok {
				return fmt.Errorf("vector elements must be string literals")
			}
		}
		return nil
	default:
		return fmt.Errorf("must be ALL, a string literal, or a vector of string literals")
	}
}

// checkConfigurationShape enforces that a configuration/vs_configuration
// value is a head-less tuple literal (a tupleNode) whose elements are
// either bare literals or "ident = literal", with literal values
// restricted to strings, integers, booleans, or vectors thereof. No
// nested function calls are permitted.
func checkConfigurationShape(n node) error {
	c, ok := n.(tupleNode)
	if !ok {
		return fmt.Errorf("must be a parenthesized tuple literal, not a function call")
	}
	for _, elem := range c.elems {
		target := elem
		if kw, ok := elem.(callNode); ok && kw.head == "=" {
			target = kw.args[1]
		}
		if err := checkConfigLiteral(target); err != nil {
			return err
		}
	}
	return nil
}

func checkConfigLiteral(n node) error {
	switch v := n.(type) {
	case identNode, stringNode, numberNode:
		return nil
	case vectorNode:
		for _, e := range v.elems {
			if err := checkConfigLiteral(e); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("configuration values must be strings, integers, booleans, or vectors thereof, got %T", n)
	}
}
