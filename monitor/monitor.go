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

package monitor

import (
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rcond/rcond/client"
	"github.com/rcond/rcond/common"
	"github.com/rcond/rcond/confengine"
	"github.com/rcond/rcond/internal/json"
	"github.com/rcond/rcond/internal/pubsub"
	"github.com/rcond/rcond/internal/rescue"
	"github.com/rcond/rcond/logger"
)

// Record 单次轮询的归档结果
type Record struct {
	Target   string `json:"target"`
	Command  string `json:"command"`
	Reply    string `json:"reply,omitempty"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
	Time     string `json:"time"`
}

// Monitor 周期性地对一组 RCON 服务端执行命令并归档结果
//
// 每个 target 持有一条长链接 断开后在下一轮自动重建
// 结果以 JSON 行写入 sink 同时发布到内部总线供 /watch 订阅
type Monitor struct {
	config Config
	bus    *pubsub.PubSub
	svr    *Server

	wr      io.WriteCloser
	enc     json.Encoder
	console bool
	encMut  sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New 根据配置创建并返回 Monitor 实例
func New(conf *confengine.Config) (*Monitor, error) {
	if conf.Has("logger") {
		var opt logger.Options
		if err := conf.UnpackChild("logger", &opt); err != nil {
			return nil, err
		}
		logger.SetOptions(opt)
	}

	var config Config
	if err := conf.UnpackChild("monitor", &config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var wr io.WriteCloser
	switch {
	case config.Output.Console:
		wr = os.Stdout
	default:
		wr = &lumberjack.Logger{
			Filename:   config.Output.Filename,
			MaxSize:    config.Output.MaxSize,
			MaxBackups: config.Output.MaxBackups,
			MaxAge:     config.Output.MaxAge,
			LocalTime:  true,
		}
	}

	bus := pubsub.New()
	svr, err := NewServer(conf, bus)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		config:  config,
		bus:     bus,
		svr:     svr,
		wr:      wr,
		enc:     json.NewEncoder(wr),
		console: config.Output.Console,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start 启动全部轮询循环与管理端服务
func (m *Monitor) Start() error {
	bi := common.GetBuildInfo()
	buildInfo.WithLabelValues(bi.Version, bi.GitHash, bi.Time).Set(1)

	for i := range m.config.Targets {
		tc := m.config.Targets[i]
		m.wg.Add(1)
		go m.pollLoop(tc)
	}

	if m.svr != nil {
		go func() {
			defer rescue.HandleCrash()
			if err := m.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("admin server exited: %v", err)
			}
		}()
	}

	logger.Infof("monitor started with %d targets", len(m.config.Targets))
	return nil
}

// Stop 停止全部轮询循环并回收资源
func (m *Monitor) Stop() error {
	m.cancel()
	m.wg.Wait()

	var errs *multierror.Error
	if m.svr != nil {
		errs = multierror.Append(errs, m.svr.Close())
	}
	if !m.console {
		errs = multierror.Append(errs, m.wr.Close())
	}
	return errs.ErrorOrNil()
}

// pollLoop 单个 target 的轮询循环 启动后立刻执行首轮
func (m *Monitor) pollLoop(tc TargetConfig) {
	defer m.wg.Done()
	defer rescue.HandleCrash()

	var conn *client.Conn
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	ticker := time.NewTicker(tc.Interval)
	defer ticker.Stop()

	m.pollOnce(tc, &conn)
	for {
		select {
		case <-m.ctx.Done():
			return

		case <-ticker.C:
			m.pollOnce(tc, &conn)
		}
	}
}

func (m *Monitor) pollOnce(tc TargetConfig, conn **client.Conn) {
	t0 := time.Now()
	reply, err := m.execute(tc, conn)

	rec := Record{
		Target:   tc.Name,
		Command:  tc.Command,
		Reply:    reply,
		Duration: time.Since(t0).String(),
		Time:     t0.Format(time.RFC3339),
	}

	pollsTotal.WithLabelValues(tc.Name).Inc()
	if err != nil {
		rec.Error = err.Error()
		pollFailures.WithLabelValues(tc.Name).Inc()
		logger.Warnf("poll target (%s) failed: %v", tc.Name, err)
	}
	m.sink(rec)
}

// execute 懒建链 失败即弃链 下一轮重新拨号
func (m *Monitor) execute(tc TargetConfig, conn **client.Conn) (string, error) {
	ctx, cancel := context.WithTimeout(m.ctx, tc.Interval)
	defer cancel()

	if *conn == nil {
		c, err := client.Dial(ctx, client.Config{
			Address:  tc.Address,
			Password: tc.Password,
		})
		if err != nil {
			return "", err
		}
		*conn = c
	}

	reply, err := (*conn).Exec(ctx, tc.Command)
	if err != nil {
		(*conn).Close()
		*conn = nil
		return "", err
	}
	return reply, nil
}

func (m *Monitor) sink(rec Record) {
	m.encMut.Lock()
	if err := m.enc.Encode(rec); err != nil {
		logger.Errorf("sink record failed: %v", err)
	}
	m.encMut.Unlock()

	if b, err := json.Marshal(rec); err == nil {
		m.bus.Publish(b)
	}
}
