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

package eval

import (
	"strings"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

// builtinMethod resolves name as a built-in method on a List, Dict, Str, or
// Depset receiver (spec §4.5 dispatch chain step 2, before the host-method
// registry). Str methods are dispatched here rather than through a
// dedicated string host type registered with hostbind, since no host type
// backs Str.
func builtinMethod(recv value.Value, name string) (value.Value, bool) {
	switch r := recv.(type) {
	case *value.List:
		return listMethod(r, name)
	case *value.Dict:
		return dictMethod(r, name)
	case value.Str:
		return strMethod(r, name)
	case *value.Depset:
		return depsetMethod(r, name)
	}
	return nil, false
}

func builtinMethodNames(recv value.Value) []string {
	switch recv.(type) {
	case *value.List:
		return []string{"append", "extend", "pop", "index", "count", "insert", "remove", "clear"}
	case *value.Dict:
		return []string{"get", "pop", "keys", "values", "items", "setdefault", "update", "clear"}
	case value.Str:
		return []string{"upper", "lower", "strip", "lstrip", "rstrip", "startswith", "endswith", "split", "join", "replace", "find", "index", "count", "format"}
	case *value.Depset:
		return []string{"to_list"}
	}
	return nil
}

func bound(name string, fn value.BuiltinFunc) value.Value { return value.NewBuiltin(name, fn) }

func arg(args value.Tuple, kwargs []value.Kwarg, names []string, i int) (value.Value, bool) {
	if i < len(args) {
		return args[i], true
	}
	if i < len(names) {
		for _, kw := range kwargs {
			if kw.Name == names[i] {
				return kw.Value, true
			}
		}
	}
	return nil, false
}

// ---- List ----

func listMethod(l *value.List, name string) (value.Value, bool) {
	switch name {
	case "append":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			v, ok := arg(args, kwargs, []string{"x"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "append: missing argument x")
			}
			return value.None, l.Append(pos, l.Scope(), v)
		}), true
	case "extend":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			v, ok := arg(args, kwargs, []string{"xs"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "extend: missing argument xs")
			}
			it, ok := v.(value.Iterable)
			if !ok {
				return nil, errors.New(errors.Type, pos, "extend: %s is not iterable", v.Type())
			}
			var elems []value.Value
			iter := it.Iterate()
			for {
				e, more := iter.Next()
				if !more {
					break
				}
				elems = append(elems, e)
			}
			iter.Done()
			return value.None, l.Extend(pos, l.Scope(), elems)
		}), true
	case "pop":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			i := l.Len() - 1
			if v, ok := arg(args, kwargs, []string{"i"}, 0); ok {
				n, ok := v.(value.Int)
				if !ok {
					return nil, errors.New(errors.Type, pos, "pop: index must be int")
				}
				i = int(n)
				if i < 0 {
					i += l.Len()
				}
			}
			return l.Pop(pos, l.Scope(), i)
		}), true
	case "insert":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			iv, ok := arg(args, kwargs, []string{"i", "x"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "insert: missing argument i")
			}
			xv, ok := arg(args, kwargs, []string{"i", "x"}, 1)
			if !ok {
				return nil, errors.New(errors.Value, pos, "insert: missing argument x")
			}
			n, ok := iv.(value.Int)
			if !ok {
				return nil, errors.New(errors.Type, pos, "insert: index must be int")
			}
			i := int(n)
			if i < 0 {
				i += l.Len()
			}
			return value.None, l.InsertAt(pos, l.Scope(), i, xv)
		}), true
	case "remove":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			v, ok := arg(args, kwargs, []string{"x"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "remove: missing argument x")
			}
			for i, e := range l.Elems() {
				eq, err := value.Equal(e, v)
				if err != nil {
					return nil, err
				}
				if eq {
					_, err := l.Pop(pos, l.Scope(), i)
					return value.None, err
				}
			}
			return nil, errors.New(errors.Value, pos, "remove: value not found in list")
		}), true
	case "index":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			v, ok := arg(args, kwargs, []string{"x"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "index: missing argument x")
			}
			for i, e := range l.Elems() {
				eq, err := value.Equal(e, v)
				if err != nil {
					return nil, err
				}
				if eq {
					return value.Int(i), nil
				}
			}
			return nil, errors.New(errors.Value, pos, "index: value not found in list")
		}), true
	case "count":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			v, ok := arg(args, kwargs, []string{"x"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "count: missing argument x")
			}
			n := 0
			for _, e := range l.Elems() {
				eq, err := value.Equal(e, v)
				if err != nil {
					return nil, err
				}
				if eq {
					n++
				}
			}
			return value.Int(n), nil
		}), true
	case "clear":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			for l.Len() > 0 {
				if _, err := l.Pop(pos, l.Scope(), l.Len()-1); err != nil {
					return nil, err
				}
			}
			return value.None, nil
		}), true
	}
	return nil, false
}

// ---- Dict ----

func dictMethod(d *value.Dict, name string) (value.Value, bool) {
	switch name {
	case "get":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			k, ok := arg(args, kwargs, []string{"key", "default"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "get: missing argument key")
			}
			if v, found := d.Get(k); found {
				return v, nil
			}
			if def, ok := arg(args, kwargs, []string{"key", "default"}, 1); ok {
				return def, nil
			}
			return value.None, nil
		}), true
	case "pop":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			k, ok := arg(args, kwargs, []string{"key", "default"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "pop: missing argument key")
			}
			v, found, err := d.Delete(pos, d.Scope(), k)
			if err != nil {
				return nil, err
			}
			if found {
				return v, nil
			}
			if def, ok := arg(args, kwargs, []string{"key", "default"}, 1); ok {
				return def, nil
			}
			return nil, errors.New(errors.Index, pos, "pop: key not found and no default given")
		}), true
	case "setdefault":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			k, ok := arg(args, kwargs, []string{"key", "default"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "setdefault: missing argument key")
			}
			if v, found := d.Get(k); found {
				return v, nil
			}
			def, ok := arg(args, kwargs, []string{"key", "default"}, 1)
			if !ok {
				def = value.None
			}
			if err := d.Put(pos, d.Scope(), k, def); err != nil {
				return nil, err
			}
			return def, nil
		}), true
	case "update":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			if v, ok := arg(args, kwargs, []string{"other"}, 0); ok {
				other, ok := v.(*value.Dict)
				if !ok {
					return nil, errors.New(errors.Type, pos, "update: argument must be a dict")
				}
				for _, k := range other.Keys() {
					ov, _ := other.Get(k)
					if err := d.Put(pos, d.Scope(), k, ov); err != nil {
						return nil, err
					}
				}
			}
			for _, kw := range kwargs {
				if err := d.Put(pos, d.Scope(), value.Str(kw.Name), kw.Value); err != nil {
					return nil, err
				}
			}
			return value.None, nil
		}), true
	case "keys":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			return value.NewList(value.NewScope(), d.Keys()), nil
		}), true
	case "values":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			keys := d.Keys()
			out := make([]value.Value, len(keys))
			for i, k := range keys {
				out[i], _ = d.Get(k)
			}
			return value.NewList(value.NewScope(), out), nil
		}), true
	case "items":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			keys := d.Keys()
			out := make([]value.Value, len(keys))
			for i, k := range keys {
				v, _ := d.Get(k)
				out[i] = value.Tuple{k, v}
			}
			return value.NewList(value.NewScope(), out), nil
		}), true
	case "clear":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			for _, k := range d.Keys() {
				if _, _, err := d.Delete(pos, d.Scope(), k); err != nil {
					return nil, err
				}
			}
			return value.None, nil
		}), true
	}
	return nil, false
}

// ---- Str ----

func strMethod(s value.Str, name string) (value.Value, bool) {
	str := string(s)
	switch name {
	case "upper":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			return value.Str(strings.ToUpper(str)), nil
		}), true
	case "lower":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			return value.Str(strings.ToLower(str)), nil
		}), true
	case "strip":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			return value.Str(strings.TrimSpace(str)), nil
		}), true
	case "lstrip":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			return value.Str(strings.TrimLeft(str, " \t\n\r")), nil
		}), true
	case "rstrip":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			return value.Str(strings.TrimRight(str, " \t\n\r")), nil
		}), true
	case "startswith":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			pfx, err := strArg(pos, args, kwargs, "prefix", 0)
			if err != nil {
				return nil, err
			}
			return value.Bool(strings.HasPrefix(str, pfx)), nil
		}), true
	case "endswith":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			sfx, err := strArg(pos, args, kwargs, "suffix", 0)
			if err != nil {
				return nil, err
			}
			return value.Bool(strings.HasSuffix(str, sfx)), nil
		}), true
	case "find":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			sub, err := strArg(pos, args, kwargs, "sub", 0)
			if err != nil {
				return nil, err
			}
			return value.Int(strings.Index(str, sub)), nil
		}), true
	case "index":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			sub, err := strArg(pos, args, kwargs, "sub", 0)
			if err != nil {
				return nil, err
			}
			i := strings.Index(str, sub)
			if i < 0 {
				return nil, errors.New(errors.Value, pos, "index: substring not found")
			}
			return value.Int(i), nil
		}), true
	case "count":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			sub, err := strArg(pos, args, kwargs, "sub", 0)
			if err != nil {
				return nil, err
			}
			return value.Int(strings.Count(str, sub)), nil
		}), true
	case "replace":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			old, err := strArg(pos, args, kwargs, "old", 0)
			if err != nil {
				return nil, err
			}
			nw, ok := arg(args, kwargs, []string{"old", "new"}, 1)
			if !ok {
				return nil, errors.New(errors.Value, pos, "replace: missing argument new")
			}
			nws, ok := nw.(value.Str)
			if !ok {
				return nil, errors.New(errors.Type, pos, "replace: new must be string")
			}
			count := -1
			if cv, ok := arg(args, kwargs, []string{"old", "new", "count"}, 2); ok {
				n, ok := cv.(value.Int)
				if !ok {
					return nil, errors.New(errors.Type, pos, "replace: count must be int")
				}
				count = int(n)
			}
			return value.Str(strings.Replace(str, old, string(nws), count)), nil
		}), true
	case "split":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			var parts []string
			if sep, ok := arg(args, kwargs, []string{"sep"}, 0); ok {
				seps, ok := sep.(value.Str)
				if !ok {
					return nil, errors.New(errors.Type, pos, "split: sep must be string")
				}
				parts = strings.Split(str, string(seps))
			} else {
				parts = strings.Fields(str)
			}
			out := make([]value.Value, len(parts))
			for i, p := range parts {
				out[i] = value.Str(p)
			}
			return value.NewList(value.NewScope(), out), nil
		}), true
	case "join":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			v, ok := arg(args, kwargs, []string{"elems"}, 0)
			if !ok {
				return nil, errors.New(errors.Value, pos, "join: missing argument elems")
			}
			it, ok := v.(value.Iterable)
			if !ok {
				return nil, errors.New(errors.Type, pos, "join: %s is not iterable", v.Type())
			}
			var parts []string
			iter := it.Iterate()
			for {
				e, more := iter.Next()
				if !more {
					break
				}
				es, ok := e.(value.Str)
				if !ok {
					iter.Done()
					return nil, errors.New(errors.Type, pos, "join: element is %s, want string", e.Type())
				}
				parts = append(parts, string(es))
			}
			iter.Done()
			return value.Str(strings.Join(parts, str)), nil
		}), true
	case "format":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			return value.Format(pos, str, value.Tuple(args))
		}), true
	}
	return nil, false
}

func strArg(pos token.Pos, args value.Tuple, kwargs []value.Kwarg, name string, i int) (string, error) {
	v, ok := arg(args, kwargs, []string{name}, i)
	if !ok {
		return "", errors.New(errors.Value, pos, "%s: missing argument", name)
	}
	s, ok := v.(value.Str)
	if !ok {
		return "", errors.New(errors.Type, pos, "%s: argument must be string, got %s", name, v.Type())
	}
	return string(s), nil
}

// ---- Depset ----

func depsetMethod(d *value.Depset, name string) (value.Value, bool) {
	switch name {
	case "to_list":
		return bound(name, func(th *value.Thread, pos token.Pos, b *value.Builtin, args value.Tuple, kwargs []value.Kwarg) (value.Value, error) {
			return value.NewList(value.NewScope(), d.ToList()), nil
		}), true
	}
	return nil, false
}
