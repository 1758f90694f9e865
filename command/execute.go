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

package command

import (
	"github.com/kvedge/respd/resp"
	"github.com/kvedge/respd/store"
)

var okFrame = resp.SimpleString("OK")
var pongFrame = resp.SimpleString("PONG")

// Execute runs cmd against s and returns the reply Frame. It never
// returns an error: every domain condition the store surfaces (missing
// key, missing field) is already encoded as Null or an Integer per the
// command table.
func Execute(cmd Command, s *store.Store) resp.Frame {
	switch cmd.Kind {
	case Get:
		if v, ok := s.Get(cmd.Key); ok {
			return v
		}
		return resp.Null()

	case Set:
		s.Set(cmd.Key, cmd.Value)
		return okFrame

	case Echo:
		return resp.BulkString(cmd.Message)

	case Ping:
		if cmd.HasArg {
			return resp.BulkString(cmd.Message)
		}
		return pongFrame

	case Del:
		return resp.Integer(int64(s.Del(cmd.Members...)))

	case Exists:
		return resp.Integer(int64(s.Exists(cmd.Members...)))

	case Type:
		return resp.SimpleString(string(s.Type(cmd.Key)))

	case HGet:
		if v, ok := s.HGet(cmd.Key, cmd.Field); ok {
			return v
		}
		return resp.Null()

	case HSet:
		s.HSet(cmd.Key, cmd.Field, cmd.Value)
		return okFrame

	case HMGet:
		elems := make([]resp.Frame, len(cmd.Fields))
		for i, field := range cmd.Fields {
			if v, ok := s.HGet(cmd.Key, field); ok {
				elems[i] = v
			} else {
				elems[i] = resp.Null()
			}
		}
		return resp.ArrayOf(elems)

	case HGetAll:
		fields, _ := s.HGetAll(cmd.Key)
		elems := make([]resp.Frame, 0, len(fields)*2)
		for field, v := range fields {
			elems = append(elems, resp.BulkString(field), v)
		}
		return resp.ArrayOf(elems)

	case HDel:
		return resp.Integer(int64(s.HDel(cmd.Key, cmd.Fields...)))

	case HLen:
		return resp.Integer(int64(s.HLen(cmd.Key)))

	case SAdd:
		return resp.Integer(int64(s.SAdd(cmd.Key, cmd.Members...)))

	case SIsMember:
		if s.SIsMember(cmd.Key, cmd.Members[0]) {
			return resp.Integer(1)
		}
		return resp.Integer(0)

	case SMembers:
		members := s.SMembers(cmd.Key)
		elems := make([]resp.Frame, len(members))
		for i, m := range members {
			elems[i] = resp.BulkString(m)
		}
		return resp.Frame{Kind: resp.KindSet, Elems: elems}

	case SCard:
		return resp.Integer(int64(s.SCard(cmd.Key)))

	case SRem:
		return resp.Integer(int64(s.SRem(cmd.Key, cmd.Members...)))

	case DBSize:
		return resp.Integer(int64(s.DBSize()))

	case CommandDoc:
		return resp.Array()

	case Unrecognized:
		return resp.Errorf("ERR unknown command '%s'", cmd.Verb)

	default:
		return resp.Errorf("ERR internal error: unhandled command %d", int(cmd.Kind))
	}
}
