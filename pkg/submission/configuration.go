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
	"strconv"
	"strings"

	"github.com/nanosoldier/bot/pkg/job"
	"github.com/nanosoldier/bot/pkg/joberror"
)

// Configuration converts a parsed "configuration"/"vs_configuration"
// kwarg value (already shape-checked by checkConfigurationShape) into
// a job.Configuration, folding recognized keys into first-class fields
// and anything else into Extra.
func Configuration(p *Parsed, kwarg string) (job.Configuration, error) {
	var cfg job.Configuration
	n, ok := p.KwNodes[kwarg]
	if !ok {
		return cfg, nil
	}
	t, ok := n.(tupleNode)
	if !ok {
		return cfg, joberror.Submissionf("%s is not a tuple literal", kwarg)
	}

	cfg.Extra = map[string]interface{}{}
	for _, elem := range t.elems {
		kw, ok := elem.(callNode)
		if !ok || kw.head != "=" {
			return cfg, joberror.Submissionf("%s elements must be name=value pairs", kwarg)
		}
		name := kw.args[0].(identNode).text
		val := kw.args[1]

		switch name {
		case "buildflags":
			flags, err := stringVector(val)
			if err != nil {
				return cfg, joberror.Submissionf("%s.buildflags: %v", kwarg, err)
			}
			cfg.BuildFlags = flags
		case "julia_binary":
			s, err := unquote(val)
			if err != nil {
				return cfg, joberror.Submissionf("%s.julia_binary: %v", kwarg, err)
			}
			cfg.JuliaBinary = s
		case "rr":
			b, err := boolLiteral(val)
			if err != nil {
				return cfg, joberror.Submissionf("%s.rr: %v", kwarg, err)
			}
			cfg.RR = b
		case "compiled":
			b, err := boolLiteral(val)
			if err != nil {
				return cfg, joberror.Submissionf("%s.compiled: %v", kwarg, err)
			}
			cfg.Compiled = b
		case "registry":
			s, err := unquote(val)
			if err != nil {
				return cfg, joberror.Submissionf("%s.registry: %v", kwarg, err)
			}
			cfg.Registry = s
		default:
			cfg.Extra[name] = val.Source()
		}
	}
	return cfg, nil
}

func stringVector(n node) ([]string, error) {
	v, ok := n.(vectorNode)
	if !ok {
		return nil, joberror.Submissionf("expected a vector literal")
	}
	out := make([]string, 0, len(v.elems))
	for _, e := range v.elems {
		s, err := unquote(e)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func unquote(n node) (string, error) {
	s, ok := n.(stringNode)
	if !ok {
		return "", joberror.Submissionf("expected a string literal")
	}
	return strings.Trim(s.text, `"`), nil
}

func boolLiteral(n node) (bool, error) {
	id, ok := n.(identNode)
	if !ok {
		return false, joberror.Submissionf("expected true or false")
	}
	b, err := strconv.ParseBool(id.text)
	if err != nil {
		return false, joberror.Submissionf("expected true or false, got %q", id.text)
	}
	return b, nil
}
