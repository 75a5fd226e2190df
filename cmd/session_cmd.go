// Copyright © 2016 Sidharth Kshatriya
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(stateCmd)
	RootCmd.AddCommand(stopCmd)
	RootCmd.AddCommand(restartCmd)
	RootCmd.AddCommand(pingCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon's process-level status: pid, inspector URL, uptime",
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("status", nil, &result)
		printJSON(result)
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the session's current debug state: running/paused, pause info, counts",
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("state", nil, &result)
		printJSON(result)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Disconnect the debug protocol transport and kill the target runtime",
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("stop", nil, nil)
		color.Green("jsdbg: stopped")
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Tear down and relaunch the target runtime with its last launch options",
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("restart", nil, nil)
		color.Green("jsdbg: restarted")
	},
}

var pingCmd = &cobra.Command{
	Use:    "ping",
	Short:  "Check that the daemon is alive, spawning one if needed",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("ping", nil, &result)
		printJSON(result)
	},
}
