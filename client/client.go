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

package client

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rcond/rcond/common"
	"github.com/rcond/rcond/internal/rescue"
	"github.com/rcond/rcond/logger"
	"github.com/rcond/rcond/protocol/prcon"
)

func newError(format string, args ...any) error {
	format = "rcon/client: " + format
	return errors.Errorf(format, args...)
}

var (
	// ErrClosed 链接已经关闭
	ErrClosed = newError("connection closed")

	// ErrAuthFailed 密码校验未通过
	ErrAuthFailed = newError("authentication failed")
)

const (
	defaultTimeout = time.Second * 10

	// notifyChanSize 服务端主动推送的缓冲上限 写满即丢弃
	notifyChanSize = 64
)

// Config 链接配置
type Config struct {
	Address  string        `config:"address"`
	Password string        `config:"password"`
	Timeout  time.Duration `config:"timeout"`

	// Options 透传给解码器的弱类型选项 如 maxBuffered
	Options common.Options `config:"options"`
}

func (c *Config) Validate() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Options == nil {
		c.Options = common.NewOptions()
	}
}

// Conn 一条已认证的 RCON 链接
//
// 链接独占一个解码器实例 读循环串行地投喂字节并按请求 ID 分发响应帧
// RCON 协议没有真正的多路复用能力 Exec 在客户端侧做了串行化
type Conn struct {
	id     string
	config Config
	conn   net.Conn
	dec    *prcon.Decoder

	// execMut 串行化命令执行 终止帧不携带原请求 ID
	// 必须保证同一时刻只有一个在途命令
	execMut sync.Mutex

	mut      sync.Mutex
	calls    map[int32]*call
	active   *call
	authCall *call

	notifyCh  chan string
	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Dial 建立 TCP 链接并完成认证握手
func Dial(ctx context.Context, config Config) (*Conn, error) {
	config.Validate()

	dialer := net.Dialer{Timeout: config.Timeout}
	nc, err := dialer.DialContext(ctx, "tcp", config.Address)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		id:       uuid.New().String(),
		config:   config,
		conn:     nc,
		dec:      prcon.NewDecoder(config.Options),
		calls:    make(map[int32]*call),
		notifyCh: make(chan string, notifyChanSize),
		closed:   make(chan struct{}),
	}
	go c.readLoop()

	if err := c.auth(ctx); err != nil {
		c.Close()
		return nil, err
	}

	connectsTotal.Inc()
	logger.Infof("conn (%s) established to %s", c.id, config.Address)
	return c, nil
}

// auth 执行认证握手
//
// 服务端以 AuthResponse 回应 成功时回显请求 ID 失败时回送 -1
// 部分实现会先回一个空的 CmdResponse 直接忽略即可
func (c *Conn) auth(ctx context.Context) error {
	id := prcon.NewRequestID()
	ca := newCall(id)

	c.mut.Lock()
	c.authCall = ca
	c.mut.Unlock()

	b, err := prcon.Encode(prcon.NewAuthRequest(id, c.config.Password))
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(b); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	select {
	case <-ca.done:
		return ca.err

	case <-ctx.Done():
		return ctx.Err()

	case <-c.closed:
		return c.closeErr
	}
}

// Exec 执行一条命令 并等待其完整输出
//
// 命令请求之后紧随一个终止探测请求 服务端按序回应
// 终止帧到达前收到的所有同 ID CmdResponse 即为该命令的分包输出
func (c *Conn) Exec(ctx context.Context, command string) (string, error) {
	c.execMut.Lock()
	defer c.execMut.Unlock()

	select {
	case <-c.closed:
		return "", c.closeErr
	default:
	}

	id := prcon.NewRequestID()
	ca := newCall(id)

	c.mut.Lock()
	c.calls[id] = ca
	c.active = ca
	c.mut.Unlock()

	defer func() {
		c.mut.Lock()
		delete(c.calls, id)
		if c.active == ca {
			c.active = nil
		}
		c.mut.Unlock()
	}()

	reqBytes, err := prcon.Encode(prcon.NewExecRequest(id, command))
	if err != nil {
		return "", err
	}
	termBytes, err := prcon.Encode(prcon.NewTermRequest())
	if err != nil {
		return "", err
	}

	requestsTotal.Inc()
	if _, err := c.conn.Write(append(reqBytes, termBytes...)); err != nil {
		requestFailures.Inc()
		c.shutdown(err)
		return "", err
	}

	select {
	case <-ca.done:
		if ca.err != nil {
			requestFailures.Inc()
			return "", ca.err
		}
		return strings.Join(ca.bodies, ""), nil

	case <-ctx.Done():
		requestFailures.Inc()
		return "", ctx.Err()

	case <-c.closed:
		requestFailures.Inc()
		return "", c.closeErr
	}
}

// Notifications 返回服务端主动推送的消息队列 ID 为 -1 的帧
func (c *Conn) Notifications() <-chan string {
	return c.notifyCh
}

// ID 返回链接唯一标识
func (c *Conn) ID() string {
	return c.id
}

// Close 关闭链接 可重复调用
//
// 在途请求以 ErrClosed 失败 缓冲区内未凑齐的半帧直接丢弃
func (c *Conn) Close() error {
	c.shutdown(ErrClosed)
	return nil
}

func (c *Conn) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		close(c.closed)
		c.conn.Close()
		logger.Debugf("conn (%s) closed: %v", c.id, err)
	})
}

// readLoop 链接的唯一读取方 串行驱动解码器
func (c *Conn) readLoop() {
	defer rescue.HandleCrash()

	buf := make([]byte, common.ReadBlockSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			// Feed 会将字节拷贝进自有缓冲 buf 可安全复用
			for _, rsp := range c.dec.Feed(buf[:n]) {
				c.dispatch(rsp)
			}
			c.observeStats()
		}
		if err != nil {
			c.shutdown(errors.WithMessage(err, "rcon/client"))
			return
		}
	}
}

// dispatch 按帧变体与请求 ID 路由响应
func (c *Conn) dispatch(rsp prcon.Response) {
	frame := rsp.Frame()

	switch rsp.(type) {
	case *prcon.TermResponse:
		// 终止帧代表当前在途命令的输出已经完整
		c.mut.Lock()
		ca := c.active
		c.active = nil
		c.mut.Unlock()

		if ca != nil {
			ca.complete(nil)
		}

	case *prcon.AuthResponse:
		c.mut.Lock()
		ca := c.authCall
		c.authCall = nil
		c.mut.Unlock()

		if ca == nil {
			return
		}
		if frame.ID == prcon.NotificationID {
			ca.complete(ErrAuthFailed)
			return
		}
		ca.complete(nil)

	case *prcon.CmdResponse:
		if frame.ID == prcon.NotificationID {
			select {
			case c.notifyCh <- frame.Body:
			default:
				// 消费方不及时则丢弃 推送不参与正确性
			}
			return
		}

		c.mut.Lock()
		ca := c.calls[frame.ID]
		if ca != nil {
			ca.bodies = append(ca.bodies, frame.Body)
		}
		c.mut.Unlock()

		if ca == nil {
			logger.Debugf("conn (%s) drops frame with stale id %d", c.id, frame.ID)
		}
	}
}

func (c *Conn) observeStats() {
	stats := c.dec.Stats()
	framesTotal.Add(float64(stats.Frames))
	bytesReceived.Add(float64(stats.Bytes))
	bufferDiscards.Add(float64(stats.Discards))
	droppedFrames.Add(float64(stats.DroppedFrames))
}
