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
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

var encoderPool bytebufferpool.Pool

// Encode serializes f as RESP wire bytes and returns a fresh slice.
func Encode(f Frame) []byte {
	bb := encoderPool.Get()
	defer encoderPool.Put(bb)
	bb.Reset()

	writeFrame(bb, f)

	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out
}

// EncodeTo appends the RESP wire encoding of f to dst and returns dst.
func EncodeTo(dst []byte, f Frame) []byte {
	bb := encoderPool.Get()
	defer encoderPool.Put(bb)
	bb.Reset()

	writeFrame(bb, f)
	return append(dst, bb.Bytes()...)
}

func writeFrame(bb *bytebufferpool.ByteBuffer, f Frame) {
	switch f.Kind {
	case KindSimpleString:
		bb.WriteByte(byte(KindSimpleString))
		bb.WriteString(f.Str)
		bb.WriteString("\r\n")

	case KindError:
		bb.WriteByte(byte(KindError))
		bb.WriteString(f.Str)
		bb.WriteString("\r\n")

	case KindInteger:
		bb.WriteByte(byte(KindInteger))
		writeInt(bb, f.Int)
		bb.WriteString("\r\n")

	case KindBulkString:
		bb.WriteByte(byte(KindBulkString))
		if f.Null {
			bb.WriteString("-1\r\n")
			return
		}
		bb.B = strconv.AppendInt(bb.B, int64(len(f.Str)), 10)
		bb.WriteString("\r\n")
		bb.WriteString(f.Str)
		bb.WriteString("\r\n")

	case KindArray:
		bb.WriteByte(byte(KindArray))
		if f.Null {
			bb.WriteString("-1\r\n")
			return
		}
		bb.B = strconv.AppendInt(bb.B, int64(len(f.Elems)), 10)
		bb.WriteString("\r\n")
		for _, e := range f.Elems {
			writeFrame(bb, e)
		}

	case KindSet:
		bb.WriteByte(byte(KindSet))
		bb.B = strconv.AppendInt(bb.B, int64(len(f.Elems)), 10)
		bb.WriteString("\r\n")
		for _, e := range f.Elems {
			writeFrame(bb, e)
		}

	case KindNull:
		bb.WriteByte(byte(KindNull))
		bb.WriteString("\r\n")

	case KindBoolean:
		bb.WriteByte(byte(KindBoolean))
		if f.Bool {
			bb.WriteByte('t')
		} else {
			bb.WriteByte('f')
		}
		bb.WriteString("\r\n")

	case KindDouble:
		bb.WriteByte(byte(KindDouble))
		bb.WriteString(formatDouble(f.Double))
		bb.WriteString("\r\n")

	case KindMap:
		bb.WriteByte(byte(KindMap))
		bb.B = strconv.AppendInt(bb.B, int64(len(f.Pairs)/2), 10)
		bb.WriteString("\r\n")
		for _, e := range sortedPairs(f.Pairs) {
			writeFrame(bb, e)
		}
	}
}

// writeInt appends the decimal form of n with an explicit sign, the wire
// convention this server chose for RESP Integers (":+123\r\n", ":-123\r\n").
func writeInt(bb *bytebufferpool.ByteBuffer, n int64) {
	if n >= 0 {
		bb.WriteByte('+')
	}
	bb.B = strconv.AppendInt(bb.B, n, 10)
}

// doubleMagnitudeWindow bounds the decimal (non-scientific) rendering of
// a Double: |x| in [1e-8, 1e8], plus the exact value 0.
const doubleMagnitudeWindow = 1e8

func formatDouble(f float64) string {
	switch {
	case f != f: // NaN
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-8 && abs <= doubleMagnitudeWindow) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if f >= 0 {
			return "+" + s
		}
		return s
	}
	return formatScientific(f)
}

// formatScientific renders f as "<sign><mantissa>e<exp>", trimming the
// leading zeros and forced "+" that Go's 'e' verb otherwise pads the
// exponent with (e.g. "1.23456789e+09" becomes "+1.23456789e9").
func formatScientific(f float64) string {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")

	negExp := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(strings.TrimPrefix(strings.TrimPrefix(exp, "+"), "-"), "0")
	if exp == "" {
		exp = "0"
	}
	if negExp {
		exp = "-" + exp
	}

	if !strings.HasPrefix(mantissa, "-") {
		mantissa = "+" + mantissa
	}
	return mantissa + "e" + exp
}

// sortedPairs orders Map pairs by ascending key, keeping each key's value
// attached, giving Map responses a deterministic wire order. Set members
// carry no such requirement and are emitted in encounter order.
func sortedPairs(pairs []Frame) []Frame {
	n := len(pairs) / 2
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return frameKey(pairs[idx[i]*2]) < frameKey(pairs[idx[j]*2])
	})

	out := make([]Frame, 0, len(pairs))
	for _, i := range idx {
		out = append(out, pairs[i*2], pairs[i*2+1])
	}
	return out
}

func frameKey(f Frame) string {
	return f.Str
}
