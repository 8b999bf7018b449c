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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcond/rcond/client"
	"github.com/rcond/rcond/internal/rescue"
)

type shellCmdConfig struct {
	Address  string
	Password string
	Timeout  time.Duration
}

var shellConfig shellCmdConfig

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive console on a remote RCON server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), shellConfig.Timeout)
		conn, err := client.Dial(ctx, client.Config{
			Address:  shellConfig.Address,
			Password: shellConfig.Password,
			Timeout:  shellConfig.Timeout,
		})
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()

		// 服务端主动推送直接打到终端
		go func() {
			defer rescue.HandleCrash()
			for msg := range conn.Notifications() {
				fmt.Printf("\n! %s\n", msg)
			}
		}()

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("rcon> ")
			if !scanner.Scan() {
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), shellConfig.Timeout)
			reply, err := conn.Exec(ctx, line)
			cancel()
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Println(reply)
		}
	},
	Example: "# rcond shell --addr 127.0.0.1:27015 --password secret",
}

func init() {
	shellCmd.Flags().StringVar(&shellConfig.Address, "addr", "127.0.0.1:27015", "RCON server address")
	shellCmd.Flags().StringVar(&shellConfig.Password, "password", "", "RCON password")
	shellCmd.Flags().DurationVar(&shellConfig.Timeout, "timeout", time.Second*10, "Per command timeout")
	rootCmd.AddCommand(shellCmd)
}
