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
	"sync"
)

// call 一次在途的请求-响应配对
//
// bodies 按到达顺序收集分包输出 complete 只会生效一次
type call struct {
	id     int32
	bodies []string
	err    error

	done     chan struct{}
	doneOnce sync.Once
}

func newCall(id int32) *call {
	return &call{
		id:   id,
		done: make(chan struct{}),
	}
}

func (c *call) complete(err error) {
	c.doneOnce.Do(func() {
		c.err = err
		close(c.done)
	})
}
