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
	"encoding/binary"

	"github.com/valyala/bytebufferpool"
)

var (
	errBodyTooLarge = newError("request body too large")
)

const (
	// maxRequestBody 请求 Body 上限 整帧不超过 4096 字节
	maxRequestBody = 4096 - minFrameBytes
)

// Request RCON 请求
type Request struct {
	ID   int32
	Type int32
	Body string
}

// NewAuthRequest 构造认证请求 Body 为明文密码
func NewAuthRequest(id int32, password string) *Request {
	return &Request{ID: id, Type: RequestAuth, Body: password}
}

// NewExecRequest 构造命令执行请求
func NewExecRequest(id int32, command string) *Request {
	return &Request{ID: id, Type: RequestExecCommand, Body: command}
}

// NewTermRequest 构造终止探测请求
//
// 紧随命令请求发送 服务端按序回应
// 其响应到达即代表前一条命令的分包输出已经完整
func NewTermRequest() *Request {
	return &Request{ID: TerminatorRequestID, Type: RequestResponseValue}
}

// Encode 将请求编码为 wire 格式
//
// [Size:i32][ID:i32][Type:i32][Body][0x00][0x00] 整数均为小端序
// Size 为自身之后的字节计数 即 len(Body)+10
func Encode(req *Request) ([]byte, error) {
	if len(req.Body) > maxRequestBody {
		return nil, errBodyTooLarge
	}

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	var scratch [4]byte
	putInt32 := func(v int32) {
		binary.LittleEndian.PutUint32(scratch[:], uint32(v))
		bb.Write(scratch[:])
	}

	putInt32(int32(len(req.Body) + headIDTypeBytes + 2))
	putInt32(req.ID)
	putInt32(req.Type)
	bb.WriteString(req.Body)
	bb.Write([]byte{cStringEnd, cStringEnd})

	b := make([]byte, bb.Len())
	copy(b, bb.B)
	return b, nil
}
