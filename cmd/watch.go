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
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcond/rcond/confengine"
	"github.com/rcond/rcond/internal/sigs"
	"github.com/rcond/rcond/monitor"
)

type watchCmdConfig struct {
	Console        bool
	Command        string
	Interval       string
	RecordsFile    string
	RecordsSize    int
	RecordsBackups int
	Server         string
	Targets        []string
}

type targetConfig struct {
	Name     string
	Address  string
	Password string
}

func (c *watchCmdConfig) decodeTargetConfig() []targetConfig {
	var tcs []targetConfig
	for idx, target := range c.Targets {
		parts := strings.Split(target, ";")
		if len(parts) < 2 {
			continue
		}

		tc := targetConfig{
			Name:     strconv.Itoa(idx),
			Address:  parts[0],
			Password: parts[1],
		}
		if len(parts) > 2 {
			tc.Name = parts[2]
		}
		tcs = append(tcs, tc)
	}
	return tcs
}

func (c *watchCmdConfig) Yaml() []byte {
	text := `
logger:
  stdout: true

monitor:
  targets:
{{ range .Targets }}
    - name: {{ .Name }}
      address: {{ .Address }}
      password: {{ .Password }}
      command: {{ $.Command }}
      interval: {{ $.Interval }}
{{ end }}
  output:
    console: {{ .Console }}
    filename: {{ .RecordsFile }}
    maxSize: {{ .RecordsSize }}
    maxBackups: {{ .RecordsBackups }}
    maxAge: 7

server:
  enabled: {{ if .Server }}true{{ else }}false{{ end }}
  address: {{ .Server }}
`
	tpl, err := template.New("Config").Parse(text)
	if err != nil {
		return nil
	}

	var buf bytes.Buffer
	err = tpl.Execute(&buf, map[string]interface{}{
		"Console":        c.Console,
		"Command":        c.Command,
		"Interval":       c.Interval,
		"Targets":        c.decodeTargetConfig(),
		"RecordsFile":    c.RecordsFile,
		"RecordsSize":    c.RecordsSize,
		"RecordsBackups": c.RecordsBackups,
		"Server":         c.Server,
	})
	if err != nil {
		return nil
	}
	return buf.Bytes()
}

var watchConfig watchCmdConfig

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll RCON servers and log command records",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := confengine.LoadContent(watchConfig.Yaml())
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

		<-sigs.Terminate()
		mon.Stop()
	},
	Example: "# rcond watch --target '127.0.0.1:27015;secret;main' --command status --console",
}

func init() {
	watchCmd.Flags().BoolVar(&watchConfig.Console, "console", false, "Enable console logging")
	watchCmd.Flags().StringSliceVar(&watchConfig.Targets, "target", nil, "Targets to poll in 'address;password[;name]' format, multiple targets supported")
	watchCmd.Flags().StringVar(&watchConfig.Command, "command", "status", "Command to execute on each poll")
	watchCmd.Flags().StringVar(&watchConfig.Interval, "interval", "15s", "Poll interval")
	watchCmd.Flags().StringVar(&watchConfig.Server, "server", "", "Admin server listen address, empty to disable")
	watchCmd.Flags().StringVar(&watchConfig.RecordsFile, "records.file", "rcond.records", "Path to records file")
	watchCmd.Flags().IntVar(&watchConfig.RecordsSize, "records.size", 100, "Maximum size of records file in MB")
	watchCmd.Flags().IntVar(&watchConfig.RecordsBackups, "records.backups", 10, "Maximum number of old records files to retain")
	rootCmd.AddCommand(watchCmd)
}
