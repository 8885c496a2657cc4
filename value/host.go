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

import "fmt"

// Host wraps an opaque host-language object exposed to the interpreter
// through the host-method registry (spec §3 "Value ... Host").
type Host struct {
	Underlying interface{}
	TypeName   string
}

func NewHost(typeName string, underlying interface{}) *Host {
	return &Host{Underlying: underlying, TypeName: typeName}
}

func (h *Host) Type() string   { return h.TypeName }
func (h *Host) Truth() bool    { return h.Underlying != nil }
func (h *Host) Freeze()        {}
func (h *Host) String() string { return fmt.Sprintf("<%s>", h.TypeName) }
