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
	"sort"
	"strings"

	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/token"
)

// ParamKind classifies one formal parameter for BindArgs.
type ParamKind int

const (
	Positional ParamKind = iota // may be supplied positionally or by name
	NamedOnly                   // may be supplied only by name (after a `*` separator)
	StarArgs                    // collects unclaimed positional arguments
	StarStarKwargs               // collects unclaimed keyword arguments
)

// ParamDesc is one formal parameter, independent of whether the callable is
// script-defined or a host descriptor (spec §3 "Signature").
type ParamDesc struct {
	Name    string
	Kind    ParamKind
	Default Value // nil if mandatory; ignored for StarArgs/StarStarKwargs
}

// BindArgs implements steps 4–6 of the uniform call protocol (spec §4.5):
// match positional arguments to positional parameters, apply defaults,
// report missing mandatory parameters, and route unclaimed arguments to
// `*args`/`**kwargs` or fail. Duplicate-keyword detection (step 3) is the
// caller's responsibility, since it must span plain kwargs and `**`
// expansion before any callable is chosen.
func BindArgs(pos token.Pos, fnName string, params []ParamDesc, args Tuple, kwargs []Kwarg) (map[string]Value, error) {
	bound := make(map[string]Value, len(params))
	var starArgs *ParamDesc
	var starStar *ParamDesc
	positional := make([]ParamDesc, 0, len(params))
	named := map[string]ParamDesc{}

	for _, p := range params {
		switch p.Kind {
		case StarArgs:
			pp := p
			starArgs = &pp
		case StarStarKwargs:
			pp := p
			starStar = &pp
		case Positional:
			positional = append(positional, p)
			named[p.Name] = p
		case NamedOnly:
			named[p.Name] = p
		}
	}

	claimedByName := map[string]bool{}

	i := 0
	for ; i < len(positional) && i < len(args); i++ {
		bound[positional[i].Name] = args[i]
		claimedByName[positional[i].Name] = true
	}
	var extraPositional []Value
	if i < len(args) {
		if starArgs == nil {
			return nil, errors.New(errors.Type, pos,
				"%s() accepts at most %d positional argument(s), got %d", fnName, len(positional), len(args))
		}
		extraPositional = append(extraPositional, args[i:]...)
	}

	var extraNamed []string
	for _, kw := range kwargs {
		pd, ok := named[kw.Name]
		if !ok {
			if starStar == nil {
				extraNamed = append(extraNamed, kw.Name)
				continue
			}
			extraNamed = append(extraNamed, kw.Name) // collected below into **kwargs
			continue
		}
		if claimedByName[kw.Name] {
			return nil, errors.New(errors.Type, pos,
				"%s() got multiple values for argument %q", fnName, kw.Name)
		}
		bound[pd.Name] = kw.Value
		claimedByName[kw.Name] = true
	}

	var missing []string
	for _, p := range params {
		if p.Kind != Positional && p.Kind != NamedOnly {
			continue
		}
		if claimedByName[p.Name] {
			continue
		}
		if p.Default != nil {
			bound[p.Name] = p.Default
			continue
		}
		missing = append(missing, p.Name)
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.Type, pos,
			"%s() missing required argument(s): %s", fnName, strings.Join(missing, ", "))
	}

	if starArgs != nil {
		bound[starArgs.Name] = Tuple(extraPositional)
	}
	if starStar != nil {
		d := NewDict(NewScope())
		for _, kw := range kwargs {
			if _, ok := named[kw.Name]; !ok {
				d.Put(pos, d.scope, Str(kw.Name), kw.Value)
			}
		}
		bound[starStar.Name] = d
	} else if len(extraNamed) > 0 {
		sort.Strings(extraNamed)
		return nil, errors.New(errors.Type, pos,
			"%s() got unexpected keyword argument(s): %s", fnName, strings.Join(extraNamed, ", "))
	}

	return bound, nil
}

// DuplicateKeywords scans plain kwargs plus `**`-expanded kwargs (already
// flattened into one slice by the caller) for repeated names, per spec
// §4.5 step 3 and §8 scenario 2.
func DuplicateKeywords(pos token.Pos, kwargs []Kwarg) error {
	seen := map[string]bool{}
	var dups []string
	for _, kw := range kwargs {
		if seen[kw.Name] {
			if !contains(dups, kw.Name) {
				dups = append(dups, kw.Name)
			}
		}
		seen[kw.Name] = true
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return errors.New(errors.Type, pos, "duplicate keyword argument(s): %s", strings.Join(dups, ", "))
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}
