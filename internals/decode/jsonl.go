// Copyright (c) 2024 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package decode

import "bytes"

// decodeJSONLInto splits data on newlines and invokes fn once per non-empty,
// non-whitespace line. Parsing errors are fatal: the first error from fn
// aborts the whole payload, there is no partial-success mode. seenLine
// reports whether at least one non-blank line was found.
func decodeJSONLInto(data []byte, fn func(line []byte) error) (seenLine bool, err error) {
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		seenLine = true
		if err := fn(line); err != nil {
			return seenLine, err
		}
	}
	return seenLine, nil
}
