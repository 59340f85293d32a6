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

package job

import (
	"fmt"
	"sort"
)

// Configuration is an opaque record handed to the package-eval sandbox
// runner. Recognized keys are given first-class fields; anything else
// is passed through unchanged via Extra, per spec.md section 3.
type Configuration struct {
	BuildFlags  []string `json:"buildflags,omitempty"`
	JuliaBinary string   `json:"julia_binary,omitempty"`
	RR          bool     `json:"rr,omitempty"`
	Compiled    bool     `json:"compiled,omitempty"`
	Registry    string   `json:"registry,omitempty"`

	// Extra holds any keyword not recognized above, passed through
	// unchanged to the sandbox runner.
	Extra map[string]interface{} `json:"-"`
}

// Equal reports whether two configurations are semantically identical,
// used by the identical-build guard in spec.md section 3's invariants
// ("the two builds must not be identical").
func (c Configuration) Equal(o Configuration) bool {
	if c.JuliaBinary != o.JuliaBinary || c.RR != o.RR || c.Compiled != o.Compiled || c.Registry != o.Registry {
		return false
	}
	if !stringSliceEqual(c.BuildFlags, o.BuildFlags) {
		return false
	}
	return extraEqual(c.Extra, o.Extra)
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func extraEqual(a, b map[string]interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok {
			return false
		}
		if fmt.Sprint(v) != fmt.Sprint(ov) {
			return false
		}
	}
	return true
}

// Keys returns the sorted Extra keys, for stable logging/rendering.
func (c Configuration) Keys() []string {
	keys := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
