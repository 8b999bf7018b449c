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

package prcon

import (
	"math/rand"

	"github.com/pkg/errors"
)

const (
	PROTO = "RCON"
)

func newError(format string, args ...any) error {
	format = "rcon/prcon: " + format
	return errors.Errorf(format, args...)
}

// 请求类型
//
// SERVERDATA_RESPONSE_VALUE 作为请求发送时是空的回显探测
// 服务端按序回应 用于界定分包响应的结束位置
const (
	RequestAuth          int32 = 3 // SERVERDATA_AUTH
	RequestExecCommand   int32 = 2 // SERVERDATA_EXECCOMMAND
	RequestResponseValue int32 = 0 // SERVERDATA_RESPONSE_VALUE
)

// 响应类型
const (
	TypeResponseValue int32 = 0 // SERVERDATA_RESPONSE_VALUE
	TypeAuthResponse  int32 = 2 // SERVERDATA_AUTH_RESPONSE
)

const (
	// TerminatorRequestID 分包响应终止帧使用的保留请求 ID
	TerminatorRequestID int32 = 999

	// NotificationID 服务端主动推送以及认证失败时使用的 ID
	NotificationID int32 = -1

	// 常规请求 ID 的合法区间 固定 9 位数字
	minRequestID int32 = 100000000
	maxRequestID int32 = 999999999
)

// validRequestID 校验响应帧携带的请求 ID
//
// 合法值为 NotificationID / TerminatorRequestID 以及 9 位数的常规区间
func validRequestID(id int32) bool {
	if id == NotificationID || id == TerminatorRequestID {
		return true
	}
	return id >= minRequestID && id <= maxRequestID
}

// NewRequestID 随机生成一个常规区间内的请求 ID
func NewRequestID() int32 {
	return minRequestID + rand.Int31n(maxRequestID-minRequestID+1)
}
