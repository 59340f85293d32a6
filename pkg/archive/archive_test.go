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

package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	in := []Entry{
		{Name: "minimum.json", Data: []byte(`{"a":1}`)},
		{Name: "build.json", Data: []byte(`{"sha":"abc"}`)},
	}

	data, err := Write(in)
	require.NoError(t, err)

	out, err := Read(data)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, in[i].Name, out[i].Name, "entry %d name", i)
		assert.Equal(t, in[i].Data, out[i].Data, "entry %d data", i)
	}
}
