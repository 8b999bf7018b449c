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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcond/rcond/common"
)

func frameBytes(id, typ int32, body string) []byte {
	b := make([]byte, 0, len(body)+minFrameBytes)
	var scratch [4]byte
	putInt32 := func(v int32) {
		binary.LittleEndian.PutUint32(scratch[:], uint32(v))
		b = append(b, scratch[:]...)
	}
	putInt32(int32(len(body) + headIDTypeBytes + 2))
	putInt32(id)
	putInt32(typ)
	b = append(b, body...)
	b = append(b, cStringEnd, cStringEnd)
	return b
}

func newTestDecoder() *Decoder {
	return NewDecoder(common.NewOptions())
}

func TestDecodeSingleFrame(t *testing.T) {
	tests := []struct {
		name string
		id   int32
		typ  int32
		body string
		want string // 期望的响应变体
	}{
		{
			name: "CmdResponse with body",
			id:   123456789,
			typ:  TypeResponseValue,
			body: "hostname: srv01\nplayers : 12 humans",
			want: "CmdResponse",
		},
		{
			name: "CmdResponse empty body",
			id:   100000000,
			typ:  TypeResponseValue,
			body: "",
			want: "CmdResponse",
		},
		{
			name: "CmdResponse max id",
			id:   999999999,
			typ:  TypeResponseValue,
			body: "ok",
			want: "CmdResponse",
		},
		{
			name: "CmdResponse notification id",
			id:   NotificationID,
			typ:  TypeResponseValue,
			body: "server shutting down",
			want: "CmdResponse",
		},
		{
			name: "AuthResponse",
			id:   555123456,
			typ:  TypeAuthResponse,
			body: "",
			want: "AuthResponse",
		},
		{
			name: "TermResponse",
			id:   TerminatorRequestID,
			typ:  TypeResponseValue,
			body: "",
			want: "TermResponse",
		},
		{
			name: "Reserved id with body decodes as CmdResponse",
			id:   TerminatorRequestID,
			typ:  TypeResponseValue,
			body: "echo",
			want: "CmdResponse",
		},
		{
			name: "UTF8 body",
			id:   314159265,
			typ:  TypeResponseValue,
			body: "玩家已连接",
			want: "CmdResponse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDecoder()
			rsps := d.Feed(frameBytes(tt.id, tt.typ, tt.body))
			assert.Len(t, rsps, 1)

			rsp := rsps[0]
			assert.Equal(t, tt.want, rsp.Name())

			frame := rsp.Frame()
			assert.Equal(t, int32(len(tt.body)+headIDTypeBytes+2), frame.Size)
			assert.Equal(t, tt.id, frame.ID)
			assert.Equal(t, tt.typ, frame.Type)
			assert.Equal(t, tt.body, frame.Body)
		})
	}
}

func TestDecodeBytewise(t *testing.T) {
	b := frameBytes(123456789, TypeResponseValue, "byte at a time")

	d := newTestDecoder()
	for i := 0; i < len(b)-1; i++ {
		rsps := d.Feed(b[i : i+1])
		assert.Empty(t, rsps)
	}

	rsps := d.Feed(b[len(b)-1:])
	assert.Len(t, rsps, 1)
	assert.Equal(t, "byte at a time", rsps[0].Frame().Body)
	assert.Equal(t, int32(123456789), rsps[0].Frame().ID)
}

func TestDecodeEveryCut(t *testing.T) {
	b := frameBytes(987654321, TypeResponseValue, "split me anywhere")

	for cut := 1; cut < len(b); cut++ {
		d := newTestDecoder()
		rsps := d.Feed(b[:cut])
		rsps = append(rsps, d.Feed(b[cut:])...)

		assert.Len(t, rsps, 1, "cut=%d", cut)
		assert.Equal(t, "split me anywhere", rsps[0].Frame().Body)
	}
}

func TestDecodeBackToBack(t *testing.T) {
	b := frameBytes(111111111, TypeResponseValue, "first")
	b = append(b, frameBytes(222222222, TypeResponseValue, "second")...)
	b = append(b, frameBytes(TerminatorRequestID, TypeResponseValue, "")...)

	d := newTestDecoder()
	rsps := d.Feed(b)
	assert.Len(t, rsps, 3)
	assert.Equal(t, "first", rsps[0].Frame().Body)
	assert.Equal(t, "second", rsps[1].Frame().Body)
	assert.Equal(t, "TermResponse", rsps[2].Name())

	stats := d.Stats()
	assert.Equal(t, uint64(3), stats.Frames)
	assert.Equal(t, uint64(len(b)), stats.Bytes)
}

func TestDecodeIDBoundary(t *testing.T) {
	accepted := []int32{100000000, 999999999, NotificationID, TerminatorRequestID}
	for _, id := range accepted {
		d := newTestDecoder()
		rsps := d.Feed(frameBytes(id, TypeResponseValue, "x"))
		assert.Len(t, rsps, 1, "id=%d", id)
	}

	rejected := []int32{99999999, 1000000000, 0, 1000}
	for _, id := range rejected {
		d := newTestDecoder()
		rsps := d.Feed(frameBytes(id, TypeResponseValue, "x"))
		assert.Empty(t, rsps, "id=%d", id)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	b := frameBytes(123456789, 7, "never valid")

	d := newTestDecoder()
	// 未知类型按数据不足处理 重复投喂同样的字节永远不会解出帧
	for i := 0; i < 3; i++ {
		rsps := d.Feed(b)
		assert.Empty(t, rsps)
	}
}

func TestDecodeMalformedTerminator(t *testing.T) {
	// 终止帧的两个终止字节被破坏
	b := frameBytes(TerminatorRequestID, TypeResponseValue, "")
	b[len(b)-2] = 0x01
	b[len(b)-1] = 0x02

	// 同一批字节中紧随其后的合法帧也一并被丢弃
	b = append(b, frameBytes(123456789, TypeResponseValue, "casualty")...)

	d := newTestDecoder()
	rsps := d.Feed(b)
	assert.Empty(t, rsps)

	stats := d.Stats()
	assert.Equal(t, uint64(1), stats.Discards)
	assert.Equal(t, uint64(0), stats.Frames)

	// 丢弃后从空缓冲恢复 新的合法帧正常解码
	rsps = d.Feed(frameBytes(123456789, TypeResponseValue, "recovered"))
	assert.Len(t, rsps, 1)
	assert.Equal(t, "recovered", rsps[0].Frame().Body)
}

func TestDecodeMalformedTerminatorNormalID(t *testing.T) {
	// 非保留 ID 的终止字节损坏仅回退等待 不清空缓冲
	b := frameBytes(123456789, TypeResponseValue, "")
	b[len(b)-2] = 0x01
	b[len(b)-1] = 0x02

	d := newTestDecoder()
	rsps := d.Feed(b)
	assert.Empty(t, rsps)

	stats := d.Stats()
	assert.Equal(t, uint64(0), stats.Discards)
}

func TestDecodeDeclaredSizeExceedsAvailable(t *testing.T) {
	b := frameBytes(123456789, TypeResponseValue, "pending body")
	half := b[:len(b)-4]

	d := newTestDecoder()
	assert.Empty(t, d.Feed(half))
	assert.Empty(t, d.Feed(nil))

	rsps := d.Feed(b[len(b)-4:])
	assert.Len(t, rsps, 1)
	assert.Equal(t, "pending body", rsps[0].Frame().Body)
}

func TestDecodeMaxBuffered(t *testing.T) {
	opts := common.NewOptions()
	opts.Merge("maxBuffered", 32)
	d := NewDecoder(opts)

	// 声明长度远大于实际 持续投喂垃圾字节直至超限
	var junk [4]byte
	binary.LittleEndian.PutUint32(junk[:], 1<<16)
	assert.Empty(t, d.Feed(junk[:]))
	assert.Empty(t, d.Feed(make([]byte, 40)))

	stats := d.Stats()
	assert.Equal(t, uint64(1), stats.Discards)

	// 超限丢弃后流重新对齐
	rsps := d.Feed(frameBytes(123456789, TypeResponseValue, "aligned"))
	assert.Len(t, rsps, 1)
}

func TestDecodeContinuationReset(t *testing.T) {
	b := frameBytes(123456789, TypeResponseValue, "two feeds")

	d := newTestDecoder()
	d.Feed(b[:6])
	assert.Equal(t, 0, d.continuation)

	d.Feed(b[6:10])
	assert.Equal(t, 1, d.continuation)

	rsps := d.Feed(b[10:])
	assert.Len(t, rsps, 1)
	assert.Equal(t, 0, d.continuation)
}
