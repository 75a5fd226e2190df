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
	"github.com/spf13/cobra"
)

var gStepModeFlag string

func init() {
	RootCmd.AddCommand(continueCmd)

	stepCmd.Flags().StringVar(&gStepModeFlag, "mode", "over", "over, into, or out")
	RootCmd.AddCommand(stepCmd)

	RootCmd.AddCommand(pauseCmd)
	RootCmd.AddCommand(runToCmd)
}

var continueCmd = &cobra.Command{
	Use:   "continue",
	Short: "Resume a paused session and wait for the next pause",
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("continue", nil, &result)
		printJSON(result)
	},
}

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Step over, into, or out of the current statement",
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("step", map[string]interface{}{"mode": gStepModeFlag}, &result)
		printJSON(result)
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Interrupt a running session at the next statement boundary",
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("pause", nil, nil)
	},
}

var runToCmd = &cobra.Command{
	Use:   "run-to <file> <line>",
	Short: "Resume until the given file:line is reached",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("run-to", map[string]interface{}{
			"file": args[0],
			"line": mustAtoi(args[1]),
		}, &result)
		printJSON(result)
	},
}
