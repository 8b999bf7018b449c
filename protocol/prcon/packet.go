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

// Frame 一个完整的已验证响应帧
//
// Size 为 wire 上声明的长度 即 ID + Type + Body + 终止字节的计数
type Frame struct {
	Size int32
	ID   int32
	Type int32
	Body string
}

// Response 解码产出的响应对象
//
// 由响应类型查表构造出对应的变体 Name 供上层做日志与打点区分
type Response interface {
	Name() string
	Frame() Frame

	setFrame(f Frame)
}

type baseResponse struct {
	frame Frame
}

func (r *baseResponse) Frame() Frame {
	return r.frame
}

func (r *baseResponse) setFrame(f Frame) {
	r.frame = f
}

// CmdResponse 命令执行输出响应 SERVERDATA_RESPONSE_VALUE
type CmdResponse struct {
	baseResponse
}

func (r *CmdResponse) Name() string {
	return "CmdResponse"
}

// AuthResponse 认证结果响应 SERVERDATA_AUTH_RESPONSE
//
// 认证失败时服务端回送 NotificationID 作为请求 ID
type AuthResponse struct {
	baseResponse
}

func (r *AuthResponse) Name() string {
	return "AuthResponse"
}

// TermResponse 分包响应终止帧 空 Body 且请求 ID 为保留值
type TermResponse struct {
	baseResponse
}

func (r *TermResponse) Name() string {
	return "TermResponse"
}

// responseFactory 响应类型到构造器的映射表
//
// 解码器先以此表校验类型字段 再在帧完整后用它构造空对象
var responseFactory = map[int32]func() Response{
	TypeResponseValue: func() Response { return &CmdResponse{} },
	TypeAuthResponse:  func() Response { return &AuthResponse{} },
}

// resolveType 返回类型码是否为已知的响应类型
func resolveType(code int32) bool {
	_, ok := responseFactory[code]
	return ok
}

// newResponse 按类型码构造空响应对象 未注册类型返回 nil
func newResponse(code int32) Response {
	f, ok := responseFactory[code]
	if !ok {
		return nil
	}
	return f()
}
