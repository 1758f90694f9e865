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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvedge/respd/resp"
	"github.com/kvedge/respd/store"
)

// run decodes one wire-level request, executes it against s, and returns
// the encoded reply bytes, mirroring one lap of the connection pipeline.
func run(t *testing.T, s *store.Store, wire string) string {
	t.Helper()

	d := resp.NewDecoder()
	d.Feed([]byte(wire))
	f, err := d.Next()
	require.NoError(t, err)

	cmd, err := Parse(f)
	require.NoError(t, err)

	reply := Execute(cmd, s)
	return string(resp.Encode(reply))
}

func TestExecute_EndToEndScenarios(t *testing.T) {
	s := store.New(8)

	// 1. SET then GET.
	assert.Equal(t, "+OK\r\n", run(t, s, "*3\r\n$3\r\nSET\r\n$5\r\nhello\r\n$5\r\nworld\r\n"))
	assert.Equal(t, "$5\r\nworld\r\n", run(t, s, "*2\r\n$3\r\nGET\r\n$5\r\nhello\r\n"))

	// 2. GET of a missing key.
	assert.Equal(t, "_\r\n", run(t, s, "*2\r\n$3\r\nGET\r\n$7\r\nmissing\r\n"))

	// 3. HSET then HGET, including a missing field.
	assert.Equal(t, "+OK\r\n", run(t, s, "*4\r\n$4\r\nHSET\r\n$1\r\nm\r\n$1\r\nf\r\n$1\r\nv\r\n"))
	assert.Equal(t, "$1\r\nv\r\n", run(t, s, "*3\r\n$4\r\nHGET\r\n$1\r\nm\r\n$1\r\nf\r\n"))
	assert.Equal(t, "_\r\n", run(t, s, "*3\r\n$4\r\nHGET\r\n$1\r\nm\r\n$1\r\ng\r\n"))

	// 4. HMGET mixes hits and a miss, preserving input order.
	assert.Equal(t, "*3\r\n$1\r\nv\r\n_\r\n$1\r\nv\r\n",
		run(t, s, "*5\r\n$5\r\nHMGET\r\n$1\r\nm\r\n$1\r\nf\r\n$1\r\ng\r\n$1\r\nf\r\n"))

	// 5. SADD returns the newly-inserted count, then 0 on repeat.
	assert.Equal(t, ":+2\r\n", run(t, s, "*4\r\n$4\r\nSADD\r\n$1\r\ns\r\n$1\r\na\r\n$1\r\nb\r\n"))
	assert.Equal(t, ":+0\r\n", run(t, s, "*4\r\n$4\r\nSADD\r\n$1\r\ns\r\n$1\r\na\r\n$1\r\nb\r\n"))

	// 6. ECHO mirrors its argument.
	assert.Equal(t, "$5\r\nhello\r\n", run(t, s, "*2\r\n$4\r\nECHO\r\n$5\r\nhello\r\n"))
}

func TestExecute_Ping(t *testing.T) {
	s := store.New(8)
	assert.Equal(t, "+PONG\r\n", run(t, s, "*1\r\n$4\r\nPING\r\n"))
	assert.Equal(t, "$5\r\nhello\r\n", run(t, s, "*2\r\n$4\r\nPING\r\n$5\r\nhello\r\n"))
}

func TestExecute_DelExistsTypeDBSize(t *testing.T) {
	s := store.New(8)
	run(t, s, "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n")

	assert.Equal(t, ":+1\r\n", run(t, s, "*2\r\n$6\r\nEXISTS\r\n$1\r\nk\r\n"))
	assert.Equal(t, "+string\r\n", run(t, s, "*2\r\n$4\r\nTYPE\r\n$1\r\nk\r\n"))
	assert.Equal(t, "+none\r\n", run(t, s, "*2\r\n$4\r\nTYPE\r\n$7\r\nmissing\r\n"))
	assert.Equal(t, ":+1\r\n", run(t, s, "*1\r\n$6\r\nDBSIZE\r\n"))

	assert.Equal(t, ":+1\r\n", run(t, s, "*3\r\n$3\r\nDEL\r\n$1\r\nk\r\n$7\r\nmissing\r\n"))
	assert.Equal(t, ":+0\r\n", run(t, s, "*1\r\n$6\r\nDBSIZE\r\n"))
}

func TestExecute_HLenSCardSRem(t *testing.T) {
	s := store.New(8)
	run(t, s, "*4\r\n$4\r\nHSET\r\n$1\r\nh\r\n$1\r\nf\r\n$1\r\nv\r\n")
	run(t, s, "*4\r\n$4\r\nSADD\r\n$1\r\ns\r\n$1\r\na\r\n$1\r\nb\r\n")

	assert.Equal(t, ":+1\r\n", run(t, s, "*2\r\n$4\r\nHLEN\r\n$1\r\nh\r\n"))
	assert.Equal(t, ":+2\r\n", run(t, s, "*2\r\n$5\r\nSCARD\r\n$1\r\ns\r\n"))
	assert.Equal(t, ":+1\r\n", run(t, s, "*3\r\n$4\r\nSREM\r\n$1\r\ns\r\n$1\r\na\r\n"))
	assert.Equal(t, ":+1\r\n", run(t, s, "*2\r\n$5\r\nSCARD\r\n$1\r\ns\r\n"))
}

func TestExecute_UnknownCommandReply(t *testing.T) {
	s := store.New(8)
	f := resp.ArrayOf([]resp.Frame{resp.BulkString("FROBNICATE")})
	cmd, err := Parse(f)
	require.NoError(t, err)
	reply := Execute(cmd, s)
	assert.Equal(t, "-ERR unknown command 'FROBNICATE'\r\n", string(resp.Encode(reply)))
}
