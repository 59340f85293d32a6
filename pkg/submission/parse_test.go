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
	"testing"

	"github.com/google/go-cmp/cmp"
)

// shape strips Parsed down to its exported, comparable fields; Parsed
// itself carries unexported AST nodes that cmp.Diff cannot walk.
type shape struct {
	Func   string
	Args   []string
	Kwargs map[string]string
}

func shapeOf(p *Parsed) shape {
	return shape{Func: p.Func, Args: p.Args, Kwargs: p.Kwargs}
}

func TestParseSimpleBenchmark(t *testing.T) {
	t.Parallel()

	p, err := Parse("@nanosoldier `runbenchmarks(\"array\")`")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := shape{Func: "runbenchmarks", Args: []string{`"array"`}}
	if diff := cmp.Diff(want, shapeOf(p)); diff != "" {
		t.Errorf("Parse result differs from expected (-want +got):\n%s", diff)
	}
	if err := ValidateBenchmark(p); err != nil {
		t.Errorf("ValidateBenchmark: %v", err)
	}
}

func TestParseComparisonBenchmark(t *testing.T) {
	t.Parallel()

	p, err := Parse("@nanosoldier `runbenchmarks(ALL, vs=\":master\")`")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := shape{Func: "runbenchmarks", Args: []string{"ALL"}, Kwargs: map[string]string{"vs": `":master"`}}
	if diff := cmp.Diff(want, shapeOf(p)); diff != "" {
		t.Errorf("Parse result differs from expected (-want +got):\n%s", diff)
	}
	if err := ValidateBenchmark(p); err != nil {
		t.Errorf("ValidateBenchmark: %v", err)
	}
}

func TestParseRejectsPositionalAfterKeyword(t *testing.T) {
	t.Parallel()

	_, err := Parse("@nanosoldier `runbenchmarks(vs=\":master\", ALL)`")
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

func TestParseRejectsDuplicateKeyword(t *testing.T) {
	t.Parallel()

	_, err := Parse(`@nanosoldier ` + "`" + `runbenchmarks(ALL, vs=":a", vs=":b")` + "`")
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

func TestValidateBenchmarkRejectsDisallowedCall(t *testing.T) {
	t.Parallel()

	p, err := Parse("@nanosoldier `runbenchmarks(ALL && system(\"rm -rf /\"))`")
	if err == nil {
		t.Fatal("expected a parse or validation error for a disallowed call, got nil")
	}
	_ = p
}

func TestValidateBenchmarkRejectsUnknownCallHead(t *testing.T) {
	t.Parallel()

	p, err := Parse(`@nanosoldier ` + "`" + `runbenchmarks(and(ALL, system("rm -rf /")))` + "`")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := ValidateBenchmark(p); err == nil {
		t.Fatal("expected ValidateBenchmark to reject a call whose head is not not/and/or/call")
	}
}

func TestValidateBenchmarkRejectsUnknownKwarg(t *testing.T) {
	t.Parallel()

	p, err := Parse(`@nanosoldier ` + "`" + `runbenchmarks(ALL, evil="true")` + "`")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := ValidateBenchmark(p); err == nil {
		t.Fatal("expected ValidateBenchmark to reject an unrecognized keyword argument")
	}
}

func TestParseRunTestsWithConfiguration(t *testing.T) {
	t.Parallel()

	p, err := Parse(`@nanosoldier ` + "`" + `runtests(ALL, vs="%self", configuration=(buildflags=["LLVM_ASSERTIONS=1"],))` + "`")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := ValidateRunTests(p); err != nil {
		t.Fatalf("ValidateRunTests: %v", err)
	}

	cfg, err := Configuration(p, "configuration")
	if err != nil {
		t.Fatalf("Configuration: %v", err)
	}
	if len(cfg.BuildFlags) != 1 || cfg.BuildFlags[0] != "LLVM_ASSERTIONS=1" {
		t.Errorf("BuildFlags = %v, want [LLVM_ASSERTIONS=1]", cfg.BuildFlags)
	}
}

func TestParseRunTestsPackageVector(t *testing.T) {
	t.Parallel()

	p, err := Parse(`@nanosoldier ` + "`" + `runtests(["Foo", "Bar"])` + "`")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := ValidateRunTests(p); err != nil {
		t.Fatalf("ValidateRunTests: %v", err)
	}
	if len(p.Args) != 1 {
		t.Fatalf("Args = %v, want exactly one vector literal", p.Args)
	}
}

func TestParseRunTestsRejectsNonStringVectorElement(t *testing.T) {
	t.Parallel()

	p, err := Parse(`@nanosoldier ` + "`" + `runtests([Foo, "Bar"])` + "`")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := ValidateRunTests(p); err == nil {
		t.Fatal("expected ValidateRunTests to reject a vector with a non-string element")
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	const body = "@nanosoldier `runbenchmarks(ALL, vs=\":master\", skipbuild=true)`"
	p1, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	reserialized := "@nanosoldier `" + p1.Func + "(" + p1.Args[0]
	for k, v := range p1.Kwargs {
		reserialized += ", " + k + "=" + v
	}
	reserialized += ")`"

	p2, err := Parse(reserialized)
	if err != nil {
		t.Fatalf("re-parsing reserialized submission: %v", err)
	}
	if p2.Func != p1.Func {
		t.Errorf("Func changed across round-trip: %q vs %q", p1.Func, p2.Func)
	}
	if len(p2.Args) != len(p1.Args) || p2.Args[0] != p1.Args[0] {
		t.Errorf("Args changed across round-trip: %v vs %v", p1.Args, p2.Args)
	}
	for k, v := range p1.Kwargs {
		if p2.Kwargs[k] != v {
			t.Errorf("Kwargs[%s] changed across round-trip: %q vs %q", k, v, p2.Kwargs[k])
		}
	}
}
