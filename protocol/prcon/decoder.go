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
	"strings"

	"github.com/rcond/rcond/common"
	"github.com/rcond/rcond/internal/streambuf"
)

const (
	// minFrameBytes 最小可判定帧长度
	//
	// 4B Size + 4B ID + 4B Type + 0B Body + 2B 终止字节
	minFrameBytes = 14

	// headIDTypeBytes Size 字段之后 Body 之前的固定头部长度
	headIDTypeBytes = 8

	// cStringEnd Body 的零字节分隔符
	cStringEnd = 0x00

	// defaultMaxBuffered 无进展缓冲上限
	//
	// 源协议在 ID / Type 校验失败时仅回退等待更多数据
	// 若流在非保留 ID 处损坏 等待永远不会有结果 缓冲将无界增长
	// 超过此上限即判定为失步 按终止帧损坏的同一策略整体丢弃
	defaultMaxBuffered = 1 << 20
)

// Stats Decoder 打点数据
type Stats struct {
	Frames        uint64 // 完整解码的帧数
	Bytes         uint64 // 累计写入的字节数
	Discards      uint64 // 缓冲区整体丢弃次数
	DroppedFrames uint64 // 类型已验证但工厂未注册而被静默丢弃的帧数
}

// Decoder RCON 响应帧的增量解码器
//
// 每条链接持有一个实例 独占一块累积缓冲区
// Feed 可以以任意切分粒度重复调用 不丢失也不重复解释任何字节
// 唯一的例外是失步丢弃策略 参见 decode 中的终止帧校验
//
// Decoder 为单 goroutine 串行使用 自身不做任何阻塞与加锁
type Decoder struct {
	buf         *streambuf.Buffer
	maxBuffered int

	// continuation 单帧跨多次 Feed 的续读计数 仅用于诊断
	// 每次成功解出完整帧后归零
	continuation int

	stats Stats
}

// NewDecoder 创建并返回 Decoder 实例
//
// opts 支持 maxBuffered 覆盖默认的无进展缓冲上限
func NewDecoder(opts common.Options) *Decoder {
	maxBuffered, err := opts.GetInt("maxBuffered")
	if err != nil || maxBuffered <= 0 {
		maxBuffered = defaultMaxBuffered
	}
	return &Decoder{
		buf:         streambuf.New(),
		maxBuffered: maxBuffered,
	}
}

// Stats 返回并清零 Decoder 打点数据
func (d *Decoder) Stats() Stats {
	stats := d.stats
	d.stats = Stats{}
	return stats
}

// Feed 写入新到达的字节 返回本轮解出的全部响应帧
//
// 一次写入可能携带多个背靠背的完整帧 因此内部循环解码直到无法取得进展
// 尾部未凑齐的半帧保留在缓冲区内 等待下一次 Feed
func (d *Decoder) Feed(p []byte) []Response {
	d.stats.Bytes += uint64(len(p))
	if d.buf.Len() > 0 {
		d.continuation++
	}
	d.buf.Write(p)

	var out []Response
	for {
		rsp, progress := d.decode()
		if !progress {
			break
		}
		if rsp != nil {
			out = append(out, rsp)
		}
	}

	// 长期无进展视为失步 整体丢弃后从空缓冲重新开始
	if d.buf.Len() > d.maxBuffered {
		d.buf.Drop()
		d.stats.Discards++
	}
	return out
}

// decode 执行一次解码尝试
//
// 返回的 progress 表示本次尝试是否消费了字节 外层以此决定是否继续
// 所有 `数据不足` 类的失败都会把游标回退到尝试前的位置
func (d *Decoder) decode() (Response, bool) {
	if d.buf.Len() < minFrameBytes {
		return nil, false
	}

	d.buf.Mark()

	// Size 声明了自身之后的字节计数 不足则说明该帧尚未到齐
	size, _ := d.buf.ReadInt32LE()
	if size < 0 || d.buf.Len() < int(size) {
		d.buf.Reset()
		return nil, false
	}

	id, _ := d.buf.ReadInt32LE()
	if !validRequestID(id) {
		d.buf.Reset()
		return nil, false
	}

	typ, _ := d.buf.ReadInt32LE()
	if !resolveType(typ) {
		d.buf.Reset()
		return nil, false
	}

	// 在声明长度范围内扫描 Body 的零字节分隔符
	// 无 Body 时游标停留在终止字节上 分隔符扫描结果为 0
	var body string
	if n := d.buf.IndexByteN(cStringEnd, int(size)-headIDTypeBytes); n > 0 {
		body = string(d.buf.Next(n))
	}

	// 终止校验 Body 之后必须是连续两个零字节
	bodyTerm, ok1 := d.buf.PeekByte(0)
	pktTerm, ok2 := d.buf.PeekByte(1)
	if !ok1 || !ok2 {
		d.buf.Reset()
		return nil, false
	}

	if bodyTerm != 0 || pktTerm != 0 {
		if id == TerminatorRequestID {
			// 终止帧损坏意味着流已经失步 终止帧没有 Body 可供重新对齐
			// 等待重试无法恢复 丢弃缓冲区内的全部剩余字节
			d.buf.Drop()
			d.stats.Discards++
			return nil, false
		}
		d.buf.Reset()
		return nil, false
	}
	d.buf.Skip(2)

	d.buf.Compact()
	d.continuation = 0
	d.stats.Frames++

	frame := Frame{Size: size, ID: id, Type: typ, Body: body}

	// 空 Body 的保留 ID 帧构造为终止响应 其余按类型查表构造
	if id == TerminatorRequestID && strings.TrimSpace(body) == "" {
		rsp := Response(&TermResponse{})
		rsp.setFrame(frame)
		return rsp, true
	}

	rsp := newResponse(typ)
	if rsp == nil {
		// 类型校验已通过但工厂未注册 理论上不可达
		// 静默丢弃该帧 不中断本轮后续帧的解码
		d.stats.DroppedFrames++
		return nil, true
	}
	rsp.setFrame(frame)
	return rsp, true
}
