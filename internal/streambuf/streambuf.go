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

package streambuf

import (
	"bytes"
	"encoding/binary"
)

// Buffer 带读游标的增量累积缓冲区
//
// Write 以拷贝方式追加字节 读操作仅移动游标不会真正删除数据
// Mark/Reset 支持推测性读取 即先读后验 验证失败时回退游标
// Compact 在一次完整的解码尝试结束后丢弃已消费的前缀 不允许在尝试中途执行
//
// Buffer 的所有操作均为单 goroutine 串行使用 不做任何加锁
type Buffer struct {
	b    []byte
	r    int // 读游标
	mark int // Mark 保存的游标位置
}

func New() *Buffer {
	return &Buffer{}
}

// Write 追加新到达的字节
func (b *Buffer) Write(p []byte) {
	b.b = append(b.b, p...)
}

// Len 返回未读字节数
func (b *Buffer) Len() int {
	return len(b.b) - b.r
}

// Mark 记录当前游标位置
func (b *Buffer) Mark() {
	b.mark = b.r
}

// Reset 将游标回退至最近一次 Mark 的位置
func (b *Buffer) Reset() {
	b.r = b.mark
}

// ReadInt32LE 读取小端序有符号 32 位整数
func (b *Buffer) ReadInt32LE() (int32, bool) {
	if b.Len() < 4 {
		return 0, false
	}
	v := int32(binary.LittleEndian.Uint32(b.b[b.r : b.r+4]))
	b.r += 4
	return v, true
}

// Next 消费并返回接下来的 n 个字节
//
// 返回的是内部存储的切片 调用方如需持有必须先拷贝
func (b *Buffer) Next(n int) []byte {
	if n > b.Len() {
		n = b.Len()
	}
	p := b.b[b.r : b.r+n]
	b.r += n
	return p
}

// PeekByte 窥视游标偏移 off 处的字节 不移动游标
func (b *Buffer) PeekByte(off int) (byte, bool) {
	if off >= b.Len() {
		return 0, false
	}
	return b.b[b.r+off], true
}

// IndexByteN 在未读区域的前 n 个字节中查找 c 首次出现的偏移
//
// 未找到返回 -1
func (b *Buffer) IndexByteN(c byte, n int) int {
	if n > b.Len() {
		n = b.Len()
	}
	if n <= 0 {
		return -1
	}
	return bytes.IndexByte(b.b[b.r:b.r+n], c)
}

// Skip 跳过 n 个字节
func (b *Buffer) Skip(n int) {
	if n > b.Len() {
		n = b.Len()
	}
	b.r += n
}

// Compact 丢弃已消费的前缀 Mark 位置随之失效
func (b *Buffer) Compact() {
	if b.r == 0 {
		return
	}
	n := copy(b.b, b.b[b.r:])
	b.b = b.b[:n]
	b.r = 0
	b.mark = 0
}

// Drop 丢弃缓冲区内的全部字节 包括尚未读取的部分
func (b *Buffer) Drop() {
	b.b = b.b[:0]
	b.r = 0
	b.mark = 0
}
