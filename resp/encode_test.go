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
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode_Integer_Sign(t *testing.T) {
	assert.Equal(t, ":+123\r\n", string(Encode(Integer(123))))
	assert.Equal(t, ":-123\r\n", string(Encode(Integer(-123))))
	assert.Equal(t, ":+0\r\n", string(Encode(Integer(0))))
}

func TestEncode_BulkString(t *testing.T) {
	assert.Equal(t, "$6\r\nfoobar\r\n", string(Encode(BulkString("foobar"))))
	assert.Equal(t, "$0\r\n\r\n", string(Encode(BulkString(""))))
	assert.Equal(t, "$-1\r\n", string(Encode(NullBulkString())))
}

func TestEncode_Array(t *testing.T) {
	got := string(Encode(Array(BulkString("foo"), Integer(7))))
	assert.Equal(t, "*2\r\n$3\r\nfoo\r\n:+7\r\n", got)
	assert.Equal(t, "*-1\r\n", string(Encode(NullArray())))
}

func TestEncode_Double_MagnitudeWindow(t *testing.T) {
	assert.Equal(t, ",+123.456\r\n", string(Encode(Double(123.456))))
	assert.True(t, strings.HasPrefix(string(Encode(Double(1.23456789e9))), ",+1.23456789e9"))
	assert.Equal(t, ",inf\r\n", string(Encode(Double(math.Inf(1)))))
	assert.Equal(t, ",-inf\r\n", string(Encode(Double(math.Inf(-1)))))
	assert.Equal(t, ",nan\r\n", string(Encode(Double(math.NaN()))))
}

func TestEncode_Boolean(t *testing.T) {
	assert.Equal(t, "#t\r\n", string(Encode(Boolean(true))))
	assert.Equal(t, "#f\r\n", string(Encode(Boolean(false))))
}

func TestEncode_Null(t *testing.T) {
	assert.Equal(t, "_\r\n", string(Encode(Null())))
}

func TestEncode_Set_PreservesOrder(t *testing.T) {
	// Set members are emitted in encounter order, not sorted.
	got := string(Encode(Set(BulkString("banana"), BulkString("apple"), BulkString("cherry"))))
	want := "~3\r\n$6\r\nbanana\r\n$5\r\napple\r\n$6\r\ncherry\r\n"
	assert.Equal(t, want, got)
}

func TestEncode_Map_KeyOrdering(t *testing.T) {
	got := string(Encode(Map(
		BulkString("zeta"), Integer(1),
		BulkString("alpha"), Integer(2),
	)))
	want := "%2\r\n$5\r\nalpha\r\n:+2\r\n$4\r\nzeta\r\n:+1\r\n"
	assert.Equal(t, want, got)
}

func TestEncode_RoundTrip(t *testing.T) {
	frames := []Frame{
		SimpleString("OK"),
		Error("ERR bad"),
		Integer(-42),
		BulkString("hello world"),
		NullBulkString(),
		Array(BulkString("a"), Integer(1), NullBulkString()),
		NullArray(),
		Null(),
		Boolean(true),
		Double(2.5),
		Set(BulkString("banana"), BulkString("apple"), BulkString("cherry")),
	}

	for _, f := range frames {
		wire := Encode(f)
		d := NewDecoder()
		d.Feed(wire)
		got, err := d.Next()
		assert.NoError(t, err, f.String())
		assert.Equal(t, f, got, f.String())
	}
}
