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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rcond/rcond/common"
)

var (
	connectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Subsystem: "client",
			Name:      "connects_total",
			Help:      "Authenticated connections total",
		},
	)

	requestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Executed commands total",
		},
	)

	requestFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Subsystem: "client",
			Name:      "request_failures_total",
			Help:      "Failed commands total",
		},
	)

	framesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Subsystem: "client",
			Name:      "frames_total",
			Help:      "Decoded response frames total",
		},
	)

	bytesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Subsystem: "client",
			Name:      "bytes_received_total",
			Help:      "Bytes fed into the frame decoder total",
		},
	)

	bufferDiscards = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Subsystem: "client",
			Name:      "buffer_discards_total",
			Help:      "Decoder buffer discards caused by desynchronized streams",
		},
	)

	droppedFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: common.App,
			Subsystem: "client",
			Name:      "dropped_frames_total",
			Help:      "Validated frames dropped by the packet factory",
		},
	)
)
