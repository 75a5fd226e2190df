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
	"io/ioutil"
	"log"

	"github.com/spf13/cobra"
)

var gHotpatchDryRunFlag bool
var gRestartFrameRefFlag string

func init() {
	RootCmd.AddCommand(setCmd)
	RootCmd.AddCommand(setReturnCmd)

	hotpatchCmd.Flags().BoolVar(&gHotpatchDryRunFlag, "dry-run", false, "validate the edit without committing it")
	RootCmd.AddCommand(hotpatchCmd)

	restartFrameCmd.Flags().StringVar(&gRestartFrameRefFlag, "frame", "", "frame handle to restart (default: top frame while paused)")
	RootCmd.AddCommand(restartFrameCmd)

	RootCmd.AddCommand(blackboxCmd)
	RootCmd.AddCommand(blackboxLsCmd)
	RootCmd.AddCommand(blackboxRmCmd)
}

var setCmd = &cobra.Command{
	Use:   "set <ref> <name> <value>",
	Short: "Assign a JavaScript expression's value to a property on an object reference",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("set", map[string]interface{}{"ref": args[0], "name": args[1], "value": args[2]}, nil)
	},
}

var setReturnCmd = &cobra.Command{
	Use:   "set-return <value>",
	Short: "Override the return value of the frame about to return (while paused at its return)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("set-return", map[string]interface{}{"value": args[0]}, nil)
	},
}

var hotpatchCmd = &cobra.Command{
	Use:   "hotpatch <scriptId> <sourceFile>",
	Short: "Replace a loaded script's source with the contents of sourceFile, in place",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		contents, err := ioutil.ReadFile(args[1])
		if err != nil {
			log.Fatalf("jsdbg: %v", err)
		}
		var result map[string]interface{}
		mustRequest("hotpatch", map[string]interface{}{
			"file": args[0], "source": string(contents), "dryRun": gHotpatchDryRunFlag,
		}, &result)
		printJSON(result)
	},
}

var restartFrameCmd = &cobra.Command{
	Use:   "restart-frame",
	Short: "Rerun a call frame from its start (default: the top frame while paused)",
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("restart-frame", map[string]interface{}{"frameRef": gRestartFrameRefFlag}, &result)
		printJSON(result)
	},
}

var blackboxCmd = &cobra.Command{
	Use:   "blackbox <pattern> [pattern...]",
	Short: "Add one or more blackbox regex patterns (matching scripts are stepped over, never into)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("blackbox", map[string]interface{}{"patterns": args}, nil)
	},
}

var blackboxLsCmd = &cobra.Command{
	Use:   "blackbox-ls",
	Short: "List active blackbox patterns",
	Run: func(cmd *cobra.Command, args []string) {
		var result []string
		mustRequest("blackbox-ls", nil, &result)
		printJSON(result)
	},
}

var blackboxRmCmd = &cobra.Command{
	Use:   "blackbox-rm <pattern> [pattern...]",
	Short: "Remove one or more blackbox patterns",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("blackbox-rm", map[string]interface{}{"patterns": args}, nil)
	},
}
