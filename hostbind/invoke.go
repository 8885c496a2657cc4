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

package hostbind

import (
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

// Invoke binds args/kwargs against d's declared parameters (reusing
// value.BindArgs for the positional/named/defaults machinery) and calls
// d.Func with the extras it requested (spec §4.6, §4.5 step 7).
func Invoke(th *value.Thread, recv value.Value, pos token.Pos, callNode interface{}, d *Descriptor, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
	if err := value.DuplicateKeywords(pos, kwargs); err != nil {
		return nil, err
	}
	params := make([]value.ParamDesc, len(d.Params))
	for i, p := range d.Params {
		kind := value.Positional
		if !p.Positional && p.Named {
			kind = value.NamedOnly
		}
		params[i] = value.ParamDesc{Name: p.Name, Kind: kind, Default: p.Default}
	}
	bound, err := value.BindArgs(pos, d.Name, params, args, kwargs)
	if err != nil {
		return nil, err
	}
	positional := make([]value.Value, len(d.Params))
	named := make(map[string]value.Value, len(d.Params))
	for i, p := range d.Params {
		positional[i] = bound[p.Name]
		named[p.Name] = bound[p.Name]
	}
	var node interface{}
	if d.WantCallNode {
		node = callNode
	}
	extraPos := token.NoPos
	if d.WantLocation {
		extraPos = pos
	}
	return d.Func(extraThreadFor(th, d), recv, extraPos, node, positional, named)
}

// extraThreadFor picks the *value.Thread extra a descriptor's Func receives,
// honoring WantThread and WantSemantics independently: a descriptor that
// wants only the active semantics (not full thread/call-stack access) gets
// a bare thread carrying just th.Semantics (spec §4.5 step 7's fourth
// fixed-order extra, §9 "small fixed-shape extras vector").
func extraThreadFor(th *value.Thread, d *Descriptor) *value.Thread {
	switch {
	case d.WantThread:
		return th
	case d.WantSemantics:
		return value.NewThread(th.Semantics)
	default:
		return nil
	}
}
