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

import "strings"

// splitWords splits s into words using POSIX shell quoting: whitespace
// separates words, single quotes are literal, double quotes allow
// backslash escapes of \ " $ and `, and an unquoted backslash escapes
// the next character.
func splitWords(s string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
	)

	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				words = append(words, current.String())
				current.Reset()

				inWord = false
			}
		case r == '\\':
			if i+1 >= len(runes) {
				return nil, errTrailingEscape
			}

			i++
			current.WriteRune(runes[i])

			inWord = true
		case r == '\'':
			end := indexRune(runes, i+1, '\'')
			if end < 0 {
				return nil, errUnterminatedQuote
			}

			current.WriteString(string(runes[i+1 : end]))
			i = end
			inWord = true
		case r == '"':
			i++

			closed := false

			for ; i < len(runes); i++ {
				c := runes[i]
				if c == '"' {
					closed = true
					break
				}

				if c == '\\' && i+1 < len(runes) && strings.ContainsRune("\\\"$`", runes[i+1]) {
					i++
					c = runes[i]
				}

				current.WriteRune(c)
			}

			if !closed {
				return nil, errUnterminatedQuote
			}

			inWord = true
		default:
			current.WriteRune(r)

			inWord = true
		}
	}

	if inWord {
		words = append(words, current.String())
	}

	return words, nil
}

func indexRune(runes []rune, from int, target rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == target {
			return i
		}
	}

	return -1
}
