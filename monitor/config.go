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
	"time"

	"github.com/pkg/errors"
)

func newError(format string, args ...any) error {
	format = "rcon/monitor: " + format
	return errors.Errorf(format, args...)
}

var (
	errNoTargets  = newError("no targets configured")
	errNoAddress  = newError("target requires an address")
	errNoPassword = newError("target requires a password")
)

const (
	defaultCommand  = "status"
	defaultInterval = time.Second * 15
)

// TargetConfig 单个被监控的 RCON 服务端
type TargetConfig struct {
	Name     string        `config:"name"`
	Address  string        `config:"address"`
	Password string        `config:"password"`
	Command  string        `config:"command"`
	Interval time.Duration `config:"interval"`
}

func (tc *TargetConfig) Validate() error {
	if tc.Address == "" {
		return errNoAddress
	}
	if tc.Password == "" {
		return errNoPassword
	}
	if tc.Name == "" {
		tc.Name = tc.Address
	}
	if tc.Command == "" {
		tc.Command = defaultCommand
	}
	if tc.Interval <= 0 {
		tc.Interval = defaultInterval
	}
	return nil
}

// OutputConfig 轮询结果的落盘配置
type OutputConfig struct {
	Console    bool   `config:"console"`
	Filename   string `config:"filename"`
	MaxSize    int    `config:"maxSize"` // unit: MB
	MaxAge     int    `config:"maxAge"`  // unit: days
	MaxBackups int    `config:"maxBackups"`
}

func (oc *OutputConfig) Validate() {
	if oc.Filename == "" {
		oc.Filename = "rcond.records"
	}
	if oc.MaxSize <= 0 {
		oc.MaxSize = 100
	}
	if oc.MaxAge <= 0 {
		oc.MaxAge = 7
	}
	if oc.MaxBackups <= 0 {
		oc.MaxBackups = 10
	}
}

// Config Monitor 配置
type Config struct {
	Targets []TargetConfig `config:"targets"`
	Output  OutputConfig   `config:"output"`
}

func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return errNoTargets
	}
	for i := range c.Targets {
		if err := c.Targets[i].Validate(); err != nil {
			return err
		}
	}
	c.Output.Validate()
	return nil
}
