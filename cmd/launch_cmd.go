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

var gBreakOnStartFlag bool
var gPortFlag int

func init() {
	RootCmd.AddCommand(launchCmd)
	launchCmd.Flags().BoolVar(&gBreakOnStartFlag, "brk", false, "pause at the very first statement instead of running to completion")
	launchCmd.Flags().IntVar(&gPortFlag, "port", 0, "inspector port to request (0 lets the runtime pick one)")

	RootCmd.AddCommand(attachCmd)
}

// launchCmd represents the launch command
var launchCmd = &cobra.Command{
	Use:   "launch <command> [args...]",
	Short: "Start a JavaScript runtime under jsdbg and connect to its debug protocol",
	Long: `
The 'jsdbg launch' command spawns the given command with an inspector flag
inserted as its second argv element, waits for the runtime's listening
banner, and connects the debug protocol transport.

    jsdbg launch node app.js
    jsdbg launch --brk node app.js

The session daemon is started automatically on first use, one per working
directory (or --session name); subsequent jsdbg invocations in the same
directory talk to the same daemon.
`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("launch", map[string]interface{}{
			"command": args,
			"brk":     gBreakOnStartFlag,
			"port":    gPortFlag,
		}, &result)
		color.Green("jsdbg: launched")
	},
}

// attachCmd represents the attach command
var attachCmd = &cobra.Command{
	Use:   "attach <ws-url>",
	Short: "Attach to an already-running runtime's debug protocol websocket",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("attach", map[string]interface{}{"target": args[0]}, nil)
		color.Green("jsdbg: attached")
	},
}
