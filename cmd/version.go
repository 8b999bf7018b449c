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

	"github.com/spf13/cobra"

	"github.com/rcond/rcond/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		bi := common.GetBuildInfo()
		fmt.Printf("%s %s\n", common.App, common.Version)
		if bi.GitHash != "" {
			fmt.Printf("git hash: %s\n", bi.GitHash)
		}
		if bi.Time != "" {
			fmt.Printf("build time: %s\n", bi.Time)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
