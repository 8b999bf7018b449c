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
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/rcond/rcond/protocol/prcon"
)

type testRequest struct {
	id   int32
	typ  int32
	body string
}

func readRequest(r io.Reader) (*testRequest, error) {
	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}

	size := int32(binary.LittleEndian.Uint32(head))
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	return &testRequest{
		id:   int32(binary.LittleEndian.Uint32(payload[0:4])),
		typ:  int32(binary.LittleEndian.Uint32(payload[4:8])),
		body: string(payload[8 : len(payload)-2]),
	}, nil
}

func respFrame(id, typ int32, body string) []byte {
	b := make([]byte, 0, len(body)+14)
	var scratch [4]byte
	putInt32 := func(v int32) {
		binary.LittleEndian.PutUint32(scratch[:], uint32(v))
		b = append(b, scratch[:]...)
	}
	putInt32(int32(len(body) + 10))
	putInt32(id)
	putInt32(typ)
	b = append(b, body...)
	b = append(b, 0x00, 0x00)
	return b
}

// startServer 起一个单链接的假 RCON 服务端 handle 返回 false 即断开
func startServer(t *testing.T, handle func(conn net.Conn, req *testRequest) bool) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			req, err := readRequest(conn)
			if err != nil {
				return
			}
			if !handle(conn, req) {
				return
			}
		}
	}()
	return ln.Addr().String()
}

func wellBehaved(password string, replies map[string][]string) func(net.Conn, *testRequest) bool {
	return func(conn net.Conn, req *testRequest) bool {
		switch req.typ {
		case prcon.RequestAuth:
			if req.body != password {
				conn.Write(respFrame(prcon.NotificationID, prcon.TypeAuthResponse, ""))
				return false
			}
			conn.Write(respFrame(req.id, prcon.TypeResponseValue, ""))
			conn.Write(respFrame(req.id, prcon.TypeAuthResponse, ""))

		case prcon.RequestExecCommand:
			for _, part := range replies[req.body] {
				conn.Write(respFrame(req.id, prcon.TypeResponseValue, part))
			}

		case prcon.RequestResponseValue:
			// 终止探测 回应终止帧
			conn.Write(respFrame(prcon.TerminatorRequestID, prcon.TypeResponseValue, ""))
		}
		return true
	}
}

func TestDialAndExec(t *testing.T) {
	addr := startServer(t, wellBehaved("secret", map[string][]string{
		"status": {"hostname: srv01\nplayers : 3 humans\n"},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	conn, err := Dial(ctx, Config{Address: addr, Password: "secret"})
	assert.NoError(t, err)
	defer conn.Close()

	reply, err := conn.Exec(ctx, "status")
	assert.NoError(t, err)
	assert.Equal(t, "hostname: srv01\nplayers : 3 humans\n", reply)
}

func TestExecSplitResponse(t *testing.T) {
	addr := startServer(t, wellBehaved("secret", map[string][]string{
		"cvarlist": {"chunk-1|", "chunk-2|", "chunk-3"},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	conn, err := Dial(ctx, Config{Address: addr, Password: "secret"})
	assert.NoError(t, err)
	defer conn.Close()

	reply, err := conn.Exec(ctx, "cvarlist")
	assert.NoError(t, err)
	assert.Equal(t, "chunk-1|chunk-2|chunk-3", reply)
}

func TestDialAuthFailure(t *testing.T) {
	addr := startServer(t, wellBehaved("secret", nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	_, err := Dial(ctx, Config{Address: addr, Password: "wrong"})
	assert.True(t, errors.Is(err, ErrAuthFailed))
}

func TestExecContextTimeout(t *testing.T) {
	// 服务端认证后对任何命令保持沉默
	addr := startServer(t, func(conn net.Conn, req *testRequest) bool {
		if req.typ == prcon.RequestAuth {
			conn.Write(respFrame(req.id, prcon.TypeAuthResponse, ""))
		}
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	conn, err := Dial(ctx, Config{Address: addr, Password: "secret"})
	assert.NoError(t, err)
	defer conn.Close()

	execCtx, execCancel := context.WithTimeout(context.Background(), time.Millisecond*100)
	defer execCancel()

	_, err = conn.Exec(execCtx, "status")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNotifications(t *testing.T) {
	addr := startServer(t, func(conn net.Conn, req *testRequest) bool {
		if req.typ == prcon.RequestAuth {
			conn.Write(respFrame(req.id, prcon.TypeAuthResponse, ""))
			// 认证完成后主动推送一条广播
			conn.Write(respFrame(prcon.NotificationID, prcon.TypeResponseValue, "map changing"))
		}
		return true
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	conn, err := Dial(ctx, Config{Address: addr, Password: "secret"})
	assert.NoError(t, err)
	defer conn.Close()

	select {
	case msg := <-conn.Notifications():
		assert.Equal(t, "map changing", msg)
	case <-time.After(time.Second * 2):
		t.Fatal("notification not delivered")
	}
}

func TestExecAfterClose(t *testing.T) {
	addr := startServer(t, wellBehaved("secret", nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	conn, err := Dial(ctx, Config{Address: addr, Password: "secret"})
	assert.NoError(t, err)

	assert.NoError(t, conn.Close())

	_, err = conn.Exec(ctx, "status")
	assert.True(t, errors.Is(err, ErrClosed))
}
