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

package graph

import (
	digest "github.com/opencontainers/go-digest"

	"github.com/skylarklang/core/ast"
	"github.com/skylarklang/core/errors"
	"github.com/skylarklang/core/parser"
	"github.com/skylarklang/core/resolve"
	"github.com/skylarklang/core/token"
	"github.com/skylarklang/core/value"
)

// ParsedFile is the loader node's output: the parsed and resolved AST plus
// its content digest, or a "missing" marker distinct from a parse error
// (spec §4.7).
type ParsedFile struct {
	Key      LoadKey
	AST      *ast.File
	Resolved *resolve.File
	Digest   digest.Digest
	Missing  bool // the file does not exist; this result is cacheable
	Errors   []errors.Error
}

// HasErrors reports whether parsing or resolving produced any error.
func (p *ParsedFile) HasErrors() bool { return len(p.Errors) > 0 }

// Loader implements the loader node (spec §4.7): it never evaluates a
// file, only parses and resolves it.
type Loader struct {
	FS          FileSystem
	PathOf      PathResolver
	Predeclared PredeclaredProvider
}

func NewLoader(fs FileSystem, pathOf PathResolver, predeclared PredeclaredProvider) *Loader {
	return &Loader{FS: fs, PathOf: pathOf, Predeclared: predeclared}
}

// Load resolves key to a path, reads and parses its bytes, resolves the
// result against the universe Predeclared supplies, and computes a content
// digest if the filesystem collaborator didn't already provide one.
func (l *Loader) Load(key LoadKey) *ParsedFile {
	path, err := l.PathOf(key)
	if err != nil {
		return &ParsedFile{Key: key, Missing: true,
			Errors: []errors.Error{errors.New(errors.LoadMissing, token.NoPos, "%s: %v", key, err)}}
	}

	info, err := l.FS.Stat(path)
	if err != nil {
		return &ParsedFile{Key: key,
			Errors: []errors.Error{errors.New(errors.IO, token.NoPos, "stat %s: %v", path, err)}}
	}
	if !info.Exists || !info.IsRegular {
		return &ParsedFile{Key: key, Missing: true}
	}

	src, err := l.FS.Read(path, info.Size)
	if err != nil {
		return &ParsedFile{Key: key,
			Errors: []errors.Error{errors.New(errors.IO, token.NoPos, "read %s: %v", path, err)}}
	}

	universe, allowInternal := l.Predeclared(key)
	f := parser.ParseFile(path, src, ast.FileOptions{LoadBindsInternal: allowInternal})
	rf := resolve.Resolve(f, universeAdapter{universe}, allowInternal)

	dg := info.Digest
	if dg == "" {
		dg = digest.FromBytes(src)
	}
	f.Digest = []byte(dg)

	var errs []errors.Error
	errs = append(errs, f.Errors.Errors()...)
	errs = append(errs, rf.Errors.Errors()...)

	return &ParsedFile{Key: key, AST: f, Resolved: rf, Digest: dg, Errors: errs}
}

// universeAdapter bridges value.Universe (Lookup/Names, used by the
// evaluator) to resolve.Universe (Has/Names, used by the resolver), which
// exist as distinct small interfaces in their own packages rather than
// forcing a dependency between resolve and value.
type universeAdapter struct{ u value.Universe }

func (a universeAdapter) Has(name string) bool { _, ok := a.u.Lookup(name); return ok }
func (a universeAdapter) Names() []string      { return a.u.Names() }
