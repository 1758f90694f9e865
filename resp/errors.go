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

import "github.com/pkg/errors"

// ErrNotComplete 表示缓冲区中的数据尚不足以构成一个完整的 Frame
//
// 调用方应当继续读取更多数据并重新调用 Next 本次调用不会消费任何字节
var ErrNotComplete = errors.New("resp: not complete")

func newError(format string, args ...any) error {
	format = "resp: " + format
	return errors.Errorf(format, args...)
}

var (
	errInvalidFrameType   = newError("invalid frame type")
	errInvalidFrameLength = newError("invalid frame length")
	errInvalidLine        = newError("invalid line, missing CRLF")
	errParseInt           = newError("failed to parse integer")
	errParseFloat         = newError("failed to parse double")
	errInvalidUTF8        = newError("invalid utf-8 in simple string")
	errInvalidBoolean     = newError("invalid boolean byte")
	errNestingTooDeep     = newError("nesting too deep")
)
