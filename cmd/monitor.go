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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcond/rcond/confengine"
	"github.com/rcond/rcond/internal/sigs"
	"github.com/rcond/rcond/logger"
	"github.com/rcond/rcond/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run rcond as a long-running RCON server monitor",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := confengine.LoadConfigPath(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}

		mon, err := monitor.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create monitor: %v\n", err)
			os.Exit(1)
		}
		if err := mon.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start monitor: %v\n", err)
			os.Exit(1)
		}

		terminate := sigs.Terminate()
		reload := sigs.Reload()
		for {
			select {
			case <-terminate:
				mon.Stop()
				return

			case <-reload:
				// 重载配置 失败则维持原实例运行
				cfg, err := confengine.LoadConfigPath(configPath)
				if err != nil {
					logger.Errorf("failed to reload config: %v", err)
					continue
				}
				next, err := monitor.New(cfg)
				if err != nil {
					logger.Errorf("failed to recreate monitor: %v", err)
					continue
				}
				mon.Stop()
				if err := next.Start(); err != nil {
					fmt.Fprintf(os.Stderr, "failed to restart monitor: %v\n", err)
					os.Exit(1)
				}
				mon = next
			}
		}
	},
	Example: "# rcond monitor --config rcond.yaml",
}

var configPath string

func init() {
	monitorCmd.Flags().StringVar(&configPath, "config", "rcond.yaml", "Configuration file path")
	rootCmd.AddCommand(monitorCmd)
}
