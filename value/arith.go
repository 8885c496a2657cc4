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
	"math"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

// AddInt implements checked `a + b` (spec §4.1 "Integer arithmetic is
// checked: overflow ... fail with ArithmeticError").
func AddInt(pos token.Pos, a, b Int) (Int, error) {
	sum := int64(a) + int64(b)
	if (b > 0 && sum < int64(a)) || (b < 0 && sum > int64(a)) {
		return 0, overflow(pos, "+", a, b)
	}
	return Int(sum), nil
}

// SubInt implements checked `a - b`.
func SubInt(pos token.Pos, a, b Int) (Int, error) {
	diff := int64(a) - int64(b)
	if (b < 0 && diff < int64(a)) || (b > 0 && diff > int64(a)) {
		return 0, overflow(pos, "-", a, b)
	}
	return Int(diff), nil
}

// MulInt implements checked `a * b`.
func MulInt(pos token.Pos, a, b Int) (Int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a == math.MinInt64 && b == -1 {
		return 0, overflow(pos, "*", a, b)
	}
	p := int64(a) * int64(b)
	if p/int64(b) != int64(a) {
		return 0, overflow(pos, "*", a, b)
	}
	return Int(p), nil
}

func overflow(pos token.Pos, op string, a, b Int) error {
	return errors.New(errors.Arithmetic, pos, "integer overflow: %d %s %d", int64(a), op, int64(b))
}

// FloorDivInt implements `a // b`: floor division (spec §4.1, §8
// "Floor-div/mod identity").
func FloorDivInt(pos token.Pos, a, b Int) (Int, error) {
	if b == 0 {
		return 0, errors.New(errors.Arithmetic, pos, "integer division by zero")
	}
	if a == math.MinInt64 && b == -1 {
		return 0, overflow(pos, "//", a, b)
	}
	q := int64(a) / int64(b)
	if (int64(a)%int64(b) != 0) && ((int64(a) < 0) != (int64(b) < 0)) {
		q--
	}
	return Int(q), nil
}

// ModInt implements `a % b`: result's sign matches the divisor (spec §4.1).
func ModInt(pos token.Pos, a, b Int) (Int, error) {
	if b == 0 {
		return 0, errors.New(errors.Arithmetic, pos, "modulo by zero")
	}
	r := int64(a) % int64(b)
	if r != 0 && (r < 0) != (int64(b) < 0) {
		r += int64(b)
	}
	return Int(r), nil
}

// ShiftLeft, ShiftRight implement `a << n`, `a >> n`; a negative shift
// count is an Arithmetic error (spec §7).
func ShiftLeft(pos token.Pos, a Int, n Int) (Int, error) {
	if n < 0 {
		return 0, errors.New(errors.Arithmetic, pos, "negative shift count")
	}
	if n >= 64 {
		return 0, nil
	}
	return Int(int64(a) << uint(n)), nil
}

func ShiftRight(pos token.Pos, a Int, n Int) (Int, error) {
	if n < 0 {
		return 0, errors.New(errors.Arithmetic, pos, "negative shift count")
	}
	if n >= 64 {
		if a < 0 {
			return -1, nil
		}
		return 0, nil
	}
	return Int(int64(a) >> uint(n)), nil
}
