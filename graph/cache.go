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

import "sync"

// CachedNode is one interned entry in the evaluation cache (spec §4.9).
// Deps is the distinct dependency-group this node's builder consulted, in
// the order it first requested them.
type CachedNode struct {
	Key    LoadKey
	Result *LoadResult
	Deps   []LoadKey
}

// Cache is the in-memory, per-build evaluation cache (spec §4.9, §5
// "Shared resource policy"). It is safe for concurrent lookup and insert;
// multiple goroutines may race to compute the same key, but the
// key-to-node mapping, once populated, refers to exactly one node.
type Cache struct {
	mu    sync.Mutex
	nodes map[LoadKey]*CachedNode
}

func NewCache() *Cache { return &Cache{nodes: map[LoadKey]*CachedNode{}} }

func (c *Cache) get(key LoadKey) (*CachedNode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.nodes[key]
	return n, ok
}

// publish interns node, or returns the node some other racing builder
// already installed for the same key (spec §4.9: "the cache tolerates
// duplicated work but guarantees ... one interned node").
func (c *Cache) publish(node *CachedNode) *CachedNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.nodes[node.Key]; ok {
		return existing
	}
	c.nodes[node.Key] = node
	return node
}

// Traverse re-registers every transitive dependency reachable from key, as
// an ordered stream of dependency-groups, so a caller's own
// dependency-tracking sees the same graph it would if the cache had never
// been consulted (spec §4.9 "Traversal contract"). visited is mutated in
// place so repeated calls across a wider traversal still only recurse into
// each node once.
func (c *Cache) Traverse(key LoadKey, consumer func(LoadKey), visited map[LoadKey]bool) {
	node, ok := c.get(key)
	if !ok {
		return
	}
	for _, dep := range node.Deps {
		consumer(dep)
		if visited[dep] {
			continue
		}
		visited[dep] = true
		c.Traverse(dep, consumer, visited)
	}
}
