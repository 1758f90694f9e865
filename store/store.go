// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store implements the concurrent in-memory backend: three
// disjoint keyspaces (kv, hash, set), each sharded across fixed-size
// arrays of independently locked Go maps.
package store

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/kvedge/respd/common"
	"github.com/kvedge/respd/resp"
)

// Type names the logical keyspace a key belongs to, returned by TYPE.
type Type string

const (
	TypeNone   Type = "none"
	TypeString Type = "string"
	TypeHash   Type = "hash"
	TypeSet    Type = "set"
)

type shard struct {
	mu   sync.RWMutex
	kv   map[string]resp.Frame
	hash map[string]map[string]resp.Frame
	set  map[string]map[string]struct{}
}

func newShard() *shard {
	return &shard{
		kv:   make(map[string]resp.Frame),
		hash: make(map[string]map[string]resp.Frame),
		set:  make(map[string]map[string]struct{}),
	}
}

// Store is the shared backend every connection's command executor reads
// from and writes to. The keyspace is partitioned into shardCount shards
// (a power of two); the shard owning a key is xxhash.Sum64String(key) &
// mask. No command spans more than one key, so a per-shard mutex is
// sufficient — there is no cross-shard locking order to worry about.
type Store struct {
	shards []*shard
	mask   uint64
}

// New returns a Store partitioned into shardCount shards. shardCount must
// be a power of two; common.DefaultShards (32) is used when it is not
// already one.
func New(shardCount int) *Store {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = common.DefaultShards
	}

	s := &Store{
		shards: make([]*shard, shardCount),
		mask:   uint64(shardCount - 1),
	}
	for i := range s.shards {
		s.shards[i] = newShard()
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	h := xxhash.Sum64String(key)
	return s.shards[h&s.mask]
}

// ShardCount returns the number of shards the store was created with.
func (s *Store) ShardCount() int {
	return len(s.shards)
}

// ShardKeyCounts returns, for each shard index, the total number of keys
// held across all three keyspaces in that shard. Used by the /metrics
// gauge that diagnoses hot-shard skew.
func (s *Store) ShardKeyCounts() []int {
	counts := make([]int, len(s.shards))
	for i, sh := range s.shards {
		sh.mu.RLock()
		counts[i] = len(sh.kv) + len(sh.hash) + len(sh.set)
		sh.mu.RUnlock()
	}
	return counts
}

// Get reads a kv key.
func (s *Store) Get(key string) (resp.Frame, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	v, ok := sh.kv[key]
	return v, ok
}

// Set unconditionally overwrites a kv key.
func (s *Store) Set(key string, value resp.Frame) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.kv[key] = value
}

// Type reports which keyspace key lives in, or TypeNone if absent from
// all three.
func (s *Store) Type(key string) Type {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if _, ok := sh.kv[key]; ok {
		return TypeString
	}
	if _, ok := sh.hash[key]; ok {
		return TypeHash
	}
	if _, ok := sh.set[key]; ok {
		return TypeSet
	}
	return TypeNone
}

// Exists reports how many of the given keys are present in any of the
// three keyspaces. Each key is counted at most once even if (in theory)
// it existed in more than one keyspace, which this store never allows.
func (s *Store) Exists(keys ...string) int {
	var n int
	for _, k := range keys {
		if s.Type(k) != TypeNone {
			n++
		}
	}
	return n
}

// Del removes each key from whichever keyspace it lives in, returning
// the count actually removed.
func (s *Store) Del(keys ...string) int {
	var n int
	for _, key := range keys {
		sh := s.shardFor(key)
		sh.mu.Lock()
		if _, ok := sh.kv[key]; ok {
			delete(sh.kv, key)
			n++
		} else if _, ok := sh.hash[key]; ok {
			delete(sh.hash, key)
			n++
		} else if _, ok := sh.set[key]; ok {
			delete(sh.set, key)
			n++
		}
		sh.mu.Unlock()
	}
	return n
}

// DBSize returns the total key count across all three keyspaces.
func (s *Store) DBSize() int {
	var n int
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.kv) + len(sh.hash) + len(sh.set)
		sh.mu.RUnlock()
	}
	return n
}

// HGet reads a single hash field. Absent if either the key or the field
// is missing.
func (s *Store) HGet(key, field string) (resp.Frame, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	h, ok := sh.hash[key]
	if !ok {
		return resp.Frame{}, false
	}
	v, ok := h[field]
	return v, ok
}

// HSet writes a single hash field, creating the hash on first use.
func (s *Store) HSet(key, field string, value resp.Frame) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	h, ok := sh.hash[key]
	if !ok {
		h = make(map[string]resp.Frame)
		sh.hash[key] = h
	}
	h[field] = value
}

// HGetAll returns a consistent snapshot of every field in the hash. The
// snapshot is a clone of the live map taken under the shard lock, so a
// concurrent writer can't be observed mid-mutation.
func (s *Store) HGetAll(key string) (map[string]resp.Frame, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	h, ok := sh.hash[key]
	if !ok {
		return nil, false
	}
	out := make(map[string]resp.Frame, len(h))
	for f, v := range h {
		out[f] = v
	}
	return out, true
}

// HDel removes the given fields from the hash, returning the count
// actually removed. An empty hash left behind is deleted entirely.
func (s *Store) HDel(key string, fields ...string) int {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	h, ok := sh.hash[key]
	if !ok {
		return 0
	}

	var n int
	for _, f := range fields {
		if _, ok := h[f]; ok {
			delete(h, f)
			n++
		}
	}
	if len(h) == 0 {
		delete(sh.hash, key)
	}
	return n
}

// HLen returns the field count of the hash, or 0 if the key is missing.
func (s *Store) HLen(key string) int {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	return len(sh.hash[key])
}

// SAdd adds members to the set, creating it on first use, and returns
// the count newly inserted (members already present don't count).
func (s *Store) SAdd(key string, members ...string) int {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	set, ok := sh.set[key]
	if !ok {
		set = make(map[string]struct{})
		sh.set[key] = set
	}

	var added int
	for _, m := range members {
		if _, exists := set[m]; !exists {
			set[m] = struct{}{}
			added++
		}
	}
	return added
}

// SIsMember tests set membership.
func (s *Store) SIsMember(key, member string) bool {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	_, ok := sh.set[key][member]
	return ok
}

// SMembers returns a snapshot copy of every member in the set.
func (s *Store) SMembers(key string) []string {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	set := sh.set[key]
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out
}

// SCard returns the member count of the set, or 0 if missing.
func (s *Store) SCard(key string) int {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	return len(sh.set[key])
}

// SRem removes members from the set, returning the count actually
// removed. An empty set left behind is deleted entirely.
func (s *Store) SRem(key string, members ...string) int {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	set, ok := sh.set[key]
	if !ok {
		return 0
	}

	var n int
	for _, m := range members {
		if _, exists := set[m]; exists {
			delete(set, m)
			n++
		}
	}
	if len(set) == 0 {
		delete(sh.set, key)
	}
	return n
}
