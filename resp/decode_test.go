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

package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_SimpleTypes(t *testing.T) {
	cases := []struct {
		wire string
		want Frame
	}{
		{"+OK\r\n", SimpleString("OK")},
		{"-ERR bad\r\n", Error("ERR bad")},
		{":1000\r\n", Integer(1000)},
		{":-7\r\n", Integer(-7)},
		{"$6\r\nfoobar\r\n", BulkString("foobar")},
		{"$0\r\n\r\n", BulkString("")},
		{"$-1\r\n", NullBulkString()},
		{"*-1\r\n", NullArray()},
		{"_\r\n", Null()},
		{"#t\r\n", Boolean(true)},
		{"#f\r\n", Boolean(false)},
		{",3.14\r\n", Double(3.14)},
		{",inf\r\n", Double(posInfForTest())},
	}

	for _, c := range cases {
		d := NewDecoder()
		d.Feed([]byte(c.wire))
		got, err := d.Next()
		require.NoError(t, err, c.wire)
		assert.Equal(t, c.want, got, c.wire)
		assert.Equal(t, 0, d.Buffered())
	}
}

func posInfForTest() float64 {
	f, _ := parseDouble([]byte("inf"))
	return f
}

func TestDecoder_Array(t *testing.T) {
	wire := "*2\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"
	d := NewDecoder()
	d.Feed([]byte(wire))
	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, Array(BulkString("foo"), BulkString("bar")), got)
}

func TestDecoder_NestedArray(t *testing.T) {
	wire := "*2\r\n*1\r\n:1\r\n$3\r\nfoo\r\n"
	d := NewDecoder()
	d.Feed([]byte(wire))
	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, Array(Array(Integer(1)), BulkString("foo")), got)
}

func TestDecoder_Map(t *testing.T) {
	wire := "%2\r\n+a\r\n:1\r\n+b\r\n:2\r\n"
	d := NewDecoder()
	d.Feed([]byte(wire))
	got, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, Map(SimpleString("a"), Integer(1), SimpleString("b"), Integer(2)), got)
}

// TestDecoder_AtomicNotComplete verifies the core streaming invariant: no
// matter where the wire bytes are split across Feed calls, a NotComplete
// result never consumes bytes and the eventual Frame is identical to
// decoding the whole message at once.
func TestDecoder_AtomicNotComplete(t *testing.T) {
	wire := []byte("*3\r\n$3\r\nfoo\r\n$3\r\nbar\r\n:42\r\n")

	for split := 0; split <= len(wire); split++ {
		d := NewDecoder()
		d.Feed(wire[:split])

		_, err := d.Next()
		if split < len(wire) {
			require.ErrorIs(t, err, ErrNotComplete, "split=%d", split)
			assert.Equal(t, split, d.Buffered(), "split=%d: buffer must be untouched on NotComplete", split)
			d.Feed(wire[split:])
		}

		got, err := d.Next()
		require.NoError(t, err, "split=%d", split)
		assert.Equal(t, Array(BulkString("foo"), BulkString("bar"), Integer(42)), got, "split=%d", split)
		assert.Equal(t, 0, d.Buffered(), "split=%d", split)
	}
}

func TestDecoder_InvalidFrameLength(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("$-5\r\n"))
	_, err := d.Next()
	assert.ErrorIs(t, err, errInvalidFrameLength)
}

func TestDecoder_InvalidBoolean(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("#x\r\n"))
	_, err := d.Next()
	assert.ErrorIs(t, err, errInvalidBoolean)
}

func TestDecoder_UnknownType(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("!oops\r\n"))
	_, err := d.Next()
	assert.ErrorIs(t, err, errInvalidFrameType)
}

func TestDecoder_NestingTooDeep(t *testing.T) {
	wire := make([]byte, 0, 2*(maxNesting+10))
	for i := 0; i < maxNesting+10; i++ {
		wire = append(wire, []byte("*1\r\n")...)
	}
	wire = append(wire, []byte(":1\r\n")...)

	d := NewDecoder()
	d.Feed(wire)
	_, err := d.Next()
	assert.ErrorIs(t, err, errNestingTooDeep)
}

func TestDecoder_SequentialFramesOnSameConnection(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("+OK\r\n:1\r\n"))

	f1, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, SimpleString("OK"), f1)

	f2, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, Integer(1), f2)

	assert.Equal(t, 0, d.Buffered())
}
