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

// Package command parses RESP Array frames into typed Commands and
// executes them against a store.Store.
package command

import "github.com/kvedge/respd/resp"

// Kind identifies which verb a Command represents.
type Kind int

const (
	Unrecognized Kind = iota
	Get
	Set
	Echo
	Ping
	Del
	Exists
	Type
	HGet
	HSet
	HMGet
	HGetAll
	HDel
	HLen
	SAdd
	SIsMember
	SMembers
	SCard
	SRem
	DBSize
	CommandDoc
)

// Command is a parsed request, tagged by Kind. Only the fields relevant
// to that Kind are populated.
type Command struct {
	Kind Kind

	Verb string // original-case verb text, for metrics labeling and Unrecognized's error message

	Key    string
	Field  string
	Fields []string // HMGET fields, HDEL fields

	Value resp.Frame // SET/HSET value

	Members []string // SADD/SREM members, SISMEMBER's single member

	Message string // ECHO argument / PING optional argument
	HasArg  bool   // PING: whether the optional message argument was given
}
