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
	"fmt"

	"github.com/google/uuid"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

// Semantics is the bag of boolean feature flags passed into every lookup
// that may be gated by a flag (spec §6 "Semantics").
type Semantics struct {
	flags map[string]bool
}

func NewSemantics(flags map[string]bool) *Semantics {
	cp := make(map[string]bool, len(flags))
	for k, v := range flags {
		cp[k] = v
	}
	return &Semantics{flags: cp}
}

func (s *Semantics) Get(name string) bool {
	if s == nil {
		return false
	}
	return s.flags[name]
}

// Hash is a stable hash of the flag set, used as part of the host-method
// descriptor registry key (spec §4.6).
func (s *Semantics) Hash() uint64 {
	if s == nil {
		return 0
	}
	var h uint64 = 14695981039346656037
	names := make([]string, 0, len(s.flags))
	for n := range s.flags {
		names = append(names, n)
	}
	sortStrings(names)
	for _, n := range names {
		if !s.flags[n] {
			continue
		}
		for i := 0; i < len(n); i++ {
			h ^= uint64(n[i])
			h *= 1099511628211
		}
	}
	return h
}

func sortStrings(xs []string) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// Frame is one entry in the dynamic call stack (spec §3 "Function-frame").
// Its Handle is a google/uuid-tagged identity so an attached debugger can
// name frames stably even though Go stack frames are not addressable.
type Frame struct {
	Handle     uuid.UUID
	Callee     Callable
	CallPos    token.Pos
	Debuggable bool
	parent     *Frame
}

// Counts holds lightweight counters for key events during one Thread's
// evaluation, grounded on cue/stats.Counts's experimental
// evaluator-statistics idiom (spec §12 "Supplemented features").
type Counts struct {
	Operations   int64 // statements dispatched
	FramesPushed int64 // calls that entered Thread.push
	MaxCallDepth int64 // peak value of Thread.depth
}

// Thread is the per-evaluation call context threaded through every Call
// (spec §3 "Function-frame", §5 cancellation).
type Thread struct {
	Semantics   *Semantics
	Stats       Counts
	top         *Frame
	depth       int
	interrupted bool
	onFrame     func(*Frame) // debugger hook, may be nil
}

func NewThread(sem *Semantics) *Thread { return &Thread{Semantics: sem} }

// CountOp records one dispatched statement or primitive operation against
// th.Stats.Operations.
func (th *Thread) CountOp() { th.Stats.Operations++ }

func (th *Thread) Interrupt() { th.interrupted = true }

func (th *Thread) push(callee Callable, pos token.Pos, debuggable bool) (*Frame, error) {
	if th.interrupted {
		return nil, errors.New(errors.Interrupted, pos, "evaluation interrupted")
	}
	for f := th.top; f != nil; f = f.parent {
		if f.Callee == callee {
			return nil, errors.New(errors.Recursion, pos, "function %s called recursively", callee.Name())
		}
	}
	fr := &Frame{Handle: newFrameID(), Callee: callee, CallPos: pos, Debuggable: debuggable, parent: th.top}
	th.top = fr
	th.depth++
	th.Stats.FramesPushed++
	if int64(th.depth) > th.Stats.MaxCallDepth {
		th.Stats.MaxCallDepth = int64(th.depth)
	}
	if th.onFrame != nil {
		th.onFrame(fr)
	}
	return fr, nil
}

func (th *Thread) pop() {
	th.top = th.top.parent
	th.depth--
}

// Push and Pop let a Callable implementation outside this package
// participate in recursion detection and frame tracking (spec §3
// "Function-frame").
func (th *Thread) Push(callee Callable, pos token.Pos, debuggable bool) (*Frame, error) {
	return th.push(callee, pos, debuggable)
}

func (th *Thread) Pop() { th.pop() }

func (th *Thread) CallStack() []*Frame {
	var out []*Frame
	for f := th.top; f != nil; f = f.parent {
		out = append(out, f)
	}
	return out
}

func (th *Thread) SetDebugHook(f func(*Frame)) { th.onFrame = f }

func newFrameID() uuid.UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Kwarg is one `name=value` argument delivered to a Callable.
type Kwarg struct {
	Name  string
	Value Value
}

// Callable is the common interface for script-defined functions, host
// functions, bound methods, and provider constructors (spec §3
// "Callable").
type Callable interface {
	Value
	Name() string
	Call(th *Thread, pos token.Pos, args Tuple, kwargs []Kwarg) (Value, error)
}

// BuiltinFunc is the Go signature backing a host function value.
type BuiltinFunc func(th *Thread, pos token.Pos, fn *Builtin, args Tuple, kwargs []Kwarg) (Value, error)

// Builtin is a host-function Callable (spec §3 "host function").
type Builtin struct {
	name string
	fn   BuiltinFunc
	recv Value // non-nil for a bound "self-call" on a host receiver
}

func NewBuiltin(name string, fn BuiltinFunc) *Builtin { return &Builtin{name: name, fn: fn} }

func (b *Builtin) Type() string   { return "builtin_function_or_method" }
func (b *Builtin) Truth() bool    { return true }
func (b *Builtin) Freeze()        {}
func (b *Builtin) Name() string   { return b.name }
func (b *Builtin) Receiver() Value { return b.recv }
func (b *Builtin) String() string { return fmt.Sprintf("<built-in function %s>", b.name) }

func (b *Builtin) BindReceiver(recv Value) *Builtin {
	return &Builtin{name: b.name, fn: b.fn, recv: recv}
}

func (b *Builtin) Call(th *Thread, pos token.Pos, args Tuple, kwargs []Kwarg) (Value, error) {
	fr, err := th.push(b, pos, false)
	if err != nil {
		return nil, err
	}
	defer th.pop()
	v, err := b.fn(th, pos, b, args, kwargs)
	if err != nil {
		if e, ok := err.(errors.Error); ok {
			return nil, errors.WithCallSite(e, pos)
		}
	}
	_ = fr
	return v, err
}

// BoundMethod is "method-on-value": a receiver plus a method name resolved
// through the host-method registry (spec §3 "method-on-value").
type BoundMethod struct {
	Receiver Value
	Method   *Builtin
}

func (m *BoundMethod) Type() string   { return "builtin_function_or_method" }
func (m *BoundMethod) Truth() bool    { return true }
func (m *BoundMethod) Freeze()        {}
func (m *BoundMethod) Name() string   { return m.Method.Name() }
func (m *BoundMethod) String() string { return fmt.Sprintf("<bound method %s>", m.Method.Name()) }

func (m *BoundMethod) Call(th *Thread, pos token.Pos, args Tuple, kwargs []Kwarg) (Value, error) {
	return m.Method.Call(th, pos, args, kwargs)
}

// Exportable is implemented by values that "learn" their own public name
// and label after a successful top-level assignment (spec §4.8 "export
// hook").
type Exportable interface {
	Value
	Export(label, name string) error
	Exported() bool
}
