// Copyright 2024 The Skylark Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package value

import (
	"strconv"
	"strings"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

// Format implements `format % operand`, supporting %s, %r, %d, and literal
// %% (spec §4.1 "String formatting"). A Tuple operand supplies successive
// arguments positionally; any other operand (including a Dict) is treated
// as a single value, not expanded by name.
func Format(pos token.Pos, format string, operand Value) (string, error) {
	var args []Value
	if t, ok := operand.(Tuple); ok {
		args = []Value(t)
	} else {
		args = []Value{operand}
	}
	var b strings.Builder
	argi := 0
	next := func() (Value, error) {
		if argi >= len(args) {
			return nil, errors.New(errors.Value, pos, "not enough arguments for format string")
		}
		v := args[argi]
		argi++
		return v, nil
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			return "", errors.New(errors.Value, pos, "incomplete format string")
		}
		switch format[i] {
		case '%':
			b.WriteByte('%')
		case 's':
			v, err := next()
			if err != nil {
				return "", err
			}
			b.WriteString(v.String())
		case 'r':
			v, err := next()
			if err != nil {
				return "", err
			}
			b.WriteString(Sprint(v))
		case 'd':
			v, err := next()
			if err != nil {
				return "", err
			}
			n, ok := v.(Int)
			if !ok {
				return "", errors.New(errors.Type, pos, "%%d format requires int, got %s", v.Type())
			}
			b.WriteString(strconv.FormatInt(int64(n), 10))
		default:
			return "", errors.New(errors.Value, pos, "unsupported format directive %%%c", format[i])
		}
	}
	if argi < len(args) {
		return "", errors.New(errors.Value, pos, "too many arguments for format string")
	}
	return b.String(), nil
}
