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

package common

const (
	// App 应用程序名称
	App = "respd"

	// Version 应用程序版本
	Version = "v0.0.1"

	// ReadWriteBlockSize 单次 conn.Read 使用的缓冲区大小
	ReadWriteBlockSize = 4096

	// DefaultShards 默认的 store 分片数量 必须是 2 的幂
	DefaultShards = 32
)
