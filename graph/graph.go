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

// Package graph implements the incremental, keyed evaluation graph that
// loads, parses, resolves, and caches extension files (spec §4.7–§4.9): the
// loader node, the extension-evaluation node, and the in-memory evaluation
// cache that preserves reference equality of values shared across loaders.
package graph

import (
	"fmt"

	digest "github.com/opencontainers/go-digest"

	"github.com/skylarklang/core/value"
)

// LoadKey identifies one extension file by its fully resolved,
// repository-qualified label (spec §3 "LoadKey").
type LoadKey struct {
	Repo  string
	Label string
}

func (k LoadKey) String() string {
	if k.Repo == "" {
		return k.Label
	}
	return fmt.Sprintf("@%s//%s", k.Repo, k.Label)
}

// FileInfo is the filesystem collaborator's stat result (spec §6
// "Filesystem").
type FileInfo struct {
	Exists      bool
	IsRegular   bool
	IsDirectory bool
	IsSymlink   bool
	Size        int64
	Digest      digest.Digest // zero value if the collaborator doesn't provide one
}

// FileSystem is the external collaborator the loader node consults for
// bytes and stat results (spec §6). Both operations may fail with an IO
// error that the loader surfaces verbatim.
type FileSystem interface {
	Stat(path string) (FileInfo, error)
	Read(path string, knownSize int64) ([]byte, error)
}

// RepoMapping resolves a `load(...)` module string, relative to the
// repository currently evaluating, to an absolute LoadKey (spec §6
// "Repository mapping").
type RepoMapping func(currentRepo, moduleString string) (LoadKey, error)

// PredeclaredProvider supplies the universe visible to key's Module, and
// whether that file has opted into loading internal (leading-underscore)
// names. The provider may return a different universe for BUILD files,
// extension files, and workspace files (spec §6 "Predeclared names
// provider").
type PredeclaredProvider func(key LoadKey) (universe value.Universe, allowInternalLoad bool)

// PathResolver maps a LoadKey to a filesystem path (spec §4.7 step 1).
type PathResolver func(key LoadKey) (path string, err error)
