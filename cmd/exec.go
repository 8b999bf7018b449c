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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcond/rcond/client"
	"github.com/rcond/rcond/internal/json"
)

type execCmdConfig struct {
	Address  string
	Password string
	Timeout  time.Duration
	JSON     bool
}

var execConfig execCmdConfig

var execCmd = &cobra.Command{
	Use:   "exec [command...]",
	Short: "Execute a command on a remote RCON server",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), execConfig.Timeout)
		defer cancel()

		conn, err := client.Dial(ctx, client.Config{
			Address:  execConfig.Address,
			Password: execConfig.Password,
			Timeout:  execConfig.Timeout,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()

		command := strings.Join(args, " ")
		reply, err := conn.Exec(ctx, command)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to execute: %v\n", err)
			os.Exit(1)
		}

		if execConfig.JSON {
			b, _ := json.Marshal(map[string]string{
				"command": command,
				"reply":   reply,
			})
			fmt.Println(string(b))
			return
		}
		fmt.Println(reply)
	},
	Example: "# rcond exec --addr 127.0.0.1:27015 --password secret status",
}

func init() {
	execCmd.Flags().StringVar(&execConfig.Address, "addr", "127.0.0.1:27015", "RCON server address")
	execCmd.Flags().StringVar(&execConfig.Password, "password", "", "RCON password")
	execCmd.Flags().DurationVar(&execConfig.Timeout, "timeout", time.Second*10, "Dial and execute timeout")
	execCmd.Flags().BoolVar(&execConfig.JSON, "json", false, "Print reply as JSON")
	rootCmd.AddCommand(execCmd)
}
