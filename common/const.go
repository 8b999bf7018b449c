// Copyright 2025 The rcond Authors
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
	App = "rcond"

	// Version 应用程序版本
	Version = "v0.0.1"

	// ReadBlockSize 链接读循环的单次读取块大小
	//
	// RCON 单帧上限约为 4KB（服务端实现差异较大）
	// 读取块无需覆盖完整帧 解码器自身会做增量拼接
	ReadBlockSize = 4096
)
