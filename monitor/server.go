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
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcond/rcond/common"
	"github.com/rcond/rcond/confengine"
	"github.com/rcond/rcond/internal/pubsub"
	"github.com/rcond/rcond/logger"
)

// ServerConfig 管理端 HTTP 服务配置
type ServerConfig struct {
	Enabled bool          `config:"enabled"`
	Address string        `config:"address"`
	Pprof   bool          `config:"pprof"`
	Timeout time.Duration `config:"timeout"`
}

// Server 管理端 HTTP 服务 暴露指标与实时轮询结果
type Server struct {
	config ServerConfig
	router *mux.Router
	server *http.Server
	bus    *pubsub.PubSub
}

// NewServer 创建并返回 Server 实例
//
// 未启用时返回空指针 调用方需先判断
func NewServer(conf *confengine.Config, bus *pubsub.PubSub) (*Server, error) {
	if !conf.Has("server") {
		return nil, nil
	}

	var config ServerConfig
	if err := conf.UnpackChild("server", &config); err != nil {
		return nil, err
	}
	if !config.Enabled {
		return nil, nil
	}

	router := mux.NewRouter()
	s := &Server{
		config: config,
		router: router,
		bus:    bus,
		server: &http.Server{
			Handler:      router,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}
	s.registerRoutes()
	if config.Pprof {
		s.registerPprofRoutes()
	}
	return s, nil
}

func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	logger.Infof("server listening on %s", s.config.Address)
	return s.server.Serve(l)
}

func (s *Server) Close() error {
	return s.server.Close()
}

func (s *Server) registerRoutes() {
	// Admin Routes
	s.registerPostRoute("/-/logger", s.routeLogger)

	// Watch Routes
	s.registerGetRoute("/watch", s.routeWatch)

	// Metrics Routes
	s.registerGetRoute("/metrics", s.routeMetrics)
}

func (s *Server) registerGetRoute(path string, f http.HandlerFunc) {
	s.router.Methods(http.MethodGet).Path(path).HandlerFunc(f)
}

func (s *Server) registerPostRoute(path string, f http.HandlerFunc) {
	s.router.Methods(http.MethodPost).Path(path).HandlerFunc(f)
}

func (s *Server) registerPprofRoutes() {
	s.registerGetRoute("/debug/pprof/cmdline", pprof.Cmdline)
	s.registerGetRoute("/debug/pprof/profile", pprof.Profile)
	s.registerGetRoute("/debug/pprof/symbol", pprof.Symbol)
	s.registerGetRoute("/debug/pprof/trace", pprof.Trace)
	s.registerGetRoute("/debug/pprof/{other}", pprof.Index)
}

func (s *Server) routeMetrics(w http.ResponseWriter, r *http.Request) {
	uptime.Set(float64(time.Now().Unix() - common.Started()))
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) routeLogger(w http.ResponseWriter, r *http.Request) {
	level := r.FormValue("level")
	logger.SetLoggerLevel(level)
	w.Write([]byte(`{"status": "success"}`))
}

// routeWatch 以行分隔的 JSON 流式推送实时轮询结果
func (s *Server) routeWatch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return
	}

	var maxMessage int
	maxMessage, _ = strconv.Atoi(r.URL.Query().Get("max_message"))
	if maxMessage <= 0 {
		maxMessage = 100
	}

	var timeout time.Duration
	timeout, _ = time.ParseDuration(r.URL.Query().Get("timeout"))
	if timeout <= 0 {
		timeout = time.Second * 30
	}

	queue := s.bus.Subscribe(10)
	defer s.bus.Unsubscribe(queue)

	for i := 0; i < maxMessage; i++ {
		data, ok := queue.PopTimeout(timeout)
		if !ok {
			return
		}

		w.Write(data)
		w.Write([]byte{'\n'})
		flusher.Flush()
	}
}
