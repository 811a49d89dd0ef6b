/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
		err  error
	}{
		{in: "", want: nil},
		{in: "kill -HUP 1", want: []string{"kill", "-HUP", "1"}},
		{in: "  spaced\t out  ", want: []string{"spaced", "out"}},
		{in: `echo 'a b' "c d"`, want: []string{"echo", "a b", "c d"}},
		{in: `echo "say \"hi\" \$HOME \n"`, want: []string{"echo", `say "hi" $HOME \n`}},
		{in: `a\ b c`, want: []string{"a b", "c"}},
		{in: `pre'fix'post`, want: []string{"prefixpost"}},
		{in: `empty '' arg`, want: []string{"empty", "", "arg"}},
		{in: `open 'quote`, err: errUnterminatedQuote},
		{in: `open "quote`, err: errUnterminatedQuote},
		{in: `trailing \`, err: errTrailingEscape},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := splitWords(tt.in)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
