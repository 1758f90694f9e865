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
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kvedge/respd/resp"
)

// ParseError is returned by Parse for anything that keeps a request from
// becoming a runnable Command. Its Error() text is exactly the body of
// the SimpleError frame the connection pipeline replies with.
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string { return e.msg }

func parseErrorf(format string, args ...any) error {
	return &ParseError{msg: fmt.Sprintf(format, args...)}
}

var errNotArray = &ParseError{msg: "ERR invalid command: expected array of bulk strings"}

// Parse turns a decoded request Frame into a Command. f must be the RESP
// Array every client request arrives as (the client's argv encoding);
// anything else is InvalidCommand.
func Parse(f resp.Frame) (Command, error) {
	if f.Kind != resp.KindArray || f.Null || len(f.Elems) == 0 {
		return Command{}, errNotArray
	}

	args, err := bulkStrings(f.Elems)
	if err != nil {
		return Command{}, err
	}

	verb := strings.ToUpper(args[0])
	rest := args[1:]

	cmd, err := parseVerb(verb, rest)
	if err != nil {
		return Command{}, err
	}
	cmd.Verb = args[0]
	return cmd, nil
}

func parseVerb(verb string, rest []string) (Command, error) {
	switch verb {
	case "GET":
		if err := validateFixed(verb, rest, 1); err != nil {
			return Command{}, err
		}
		return Command{Kind: Get, Key: rest[0]}, nil

	case "SET":
		if err := validateFixed(verb, rest, 2); err != nil {
			return Command{}, err
		}
		return Command{Kind: Set, Key: rest[0], Value: resp.BulkString(rest[1])}, nil

	case "ECHO":
		if err := validateFixed(verb, rest, 1); err != nil {
			return Command{}, err
		}
		return Command{Kind: Echo, Message: rest[0]}, nil

	case "PING":
		if len(rest) > 1 {
			return Command{}, arityError(verb)
		}
		cmd := Command{Kind: Ping}
		if len(rest) == 1 {
			cmd.HasArg = true
			cmd.Message = rest[0]
		}
		return cmd, nil

	case "DEL":
		if err := validateDynamic(verb, rest, 1); err != nil {
			return Command{}, err
		}
		return Command{Kind: Del, Members: rest}, nil

	case "EXISTS":
		if err := validateDynamic(verb, rest, 1); err != nil {
			return Command{}, err
		}
		return Command{Kind: Exists, Members: rest}, nil

	case "TYPE":
		if err := validateFixed(verb, rest, 1); err != nil {
			return Command{}, err
		}
		return Command{Kind: Type, Key: rest[0]}, nil

	case "HGET":
		if err := validateFixed(verb, rest, 2); err != nil {
			return Command{}, err
		}
		return Command{Kind: HGet, Key: rest[0], Field: rest[1]}, nil

	case "HSET":
		if err := validateFixed(verb, rest, 3); err != nil {
			return Command{}, err
		}
		return Command{Kind: HSet, Key: rest[0], Field: rest[1], Value: resp.BulkString(rest[2])}, nil

	case "HMGET":
		if err := validateDynamic(verb, rest, 2); err != nil {
			return Command{}, err
		}
		return Command{Kind: HMGet, Key: rest[0], Fields: rest[1:]}, nil

	case "HGETALL":
		if err := validateFixed(verb, rest, 1); err != nil {
			return Command{}, err
		}
		return Command{Kind: HGetAll, Key: rest[0]}, nil

	case "HDEL":
		if err := validateDynamic(verb, rest, 2); err != nil {
			return Command{}, err
		}
		return Command{Kind: HDel, Key: rest[0], Fields: rest[1:]}, nil

	case "HLEN":
		if err := validateFixed(verb, rest, 1); err != nil {
			return Command{}, err
		}
		return Command{Kind: HLen, Key: rest[0]}, nil

	case "SADD":
		if err := validateDynamic(verb, rest, 2); err != nil {
			return Command{}, err
		}
		return Command{Kind: SAdd, Key: rest[0], Members: rest[1:]}, nil

	case "SISMEMBER":
		if err := validateFixed(verb, rest, 2); err != nil {
			return Command{}, err
		}
		return Command{Kind: SIsMember, Key: rest[0], Members: rest[1:2]}, nil

	case "SMEMBERS":
		if err := validateFixed(verb, rest, 1); err != nil {
			return Command{}, err
		}
		return Command{Kind: SMembers, Key: rest[0]}, nil

	case "SCARD":
		if err := validateFixed(verb, rest, 1); err != nil {
			return Command{}, err
		}
		return Command{Kind: SCard, Key: rest[0]}, nil

	case "SREM":
		if err := validateDynamic(verb, rest, 2); err != nil {
			return Command{}, err
		}
		return Command{Kind: SRem, Key: rest[0], Members: rest[1:]}, nil

	case "DBSIZE":
		if err := validateFixed(verb, rest, 0); err != nil {
			return Command{}, err
		}
		return Command{Kind: DBSize}, nil

	case "COMMAND":
		return Command{Kind: CommandDoc}, nil

	default:
		return Command{Kind: Unrecognized}, nil
	}
}

// bulkStrings extracts the string payload of each element, requiring
// every element be a non-null BulkString — the RESP encoding of a
// client's argv. A non-textual or null argument is Utf8Error/InvalidArgument.
func bulkStrings(elems []resp.Frame) ([]string, error) {
	out := make([]string, len(elems))
	for i, e := range elems {
		if e.Kind != resp.KindBulkString || e.Null {
			return nil, parseErrorf("ERR protocol error: expected bulk string argument")
		}
		if !utf8.ValidString(e.Str) {
			return nil, parseErrorf("ERR invalid argument: expected valid UTF-8")
		}
		out[i] = e.Str
	}
	return out, nil
}

// validateFixed requires exactly k arguments after the verb.
func validateFixed(verb string, args []string, k int) error {
	if len(args) != k {
		return arityError(verb)
	}
	return nil
}

// validateDynamic requires at least kMin arguments after the verb.
func validateDynamic(verb string, args []string, kMin int) error {
	if len(args) < kMin {
		return arityError(verb)
	}
	return nil
}

func arityError(verb string) error {
	return parseErrorf("ERR wrong number of arguments for '%s' command", strings.ToLower(verb))
}
