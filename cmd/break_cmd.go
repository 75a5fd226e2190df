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
	"log"

	"github.com/spf13/cobra"
)

var gConditionFlag string
var gHitCountFlag int
var gEnabledFlag bool
var gURLRegexFlag string

func init() {
	breakCmd.Flags().StringVar(&gConditionFlag, "condition", "", "JavaScript expression; the breakpoint only fires when it is truthy")
	breakCmd.Flags().IntVar(&gHitCountFlag, "hit-count", 0, "only fire on the Nth hit (0 means every hit)")
	breakCmd.Flags().StringVar(&gURLRegexFlag, "url-regex", "", "match the breakpoint against every script URL this pattern matches, instead of a single file")
	RootCmd.AddCommand(breakCmd)

	RootCmd.AddCommand(breakRmCmd)
	RootCmd.AddCommand(breakLsCmd)

	breakToggleCmd.Flags().BoolVar(&gEnabledFlag, "enabled", true, "enable (true) or disable (false) the breakpoint")
	RootCmd.AddCommand(breakToggleCmd)

	RootCmd.AddCommand(breakableCmd)
	RootCmd.AddCommand(logpointCmd)
	RootCmd.AddCommand(catchCmd)
}

var breakCmd = &cobra.Command{
	Use:   "break [file] <line>",
	Short: "Set a breakpoint at file:line, or at line across every --url-regex match",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		file, line := "", args[0]
		if len(args) == 2 {
			file, line = args[0], args[1]
		} else if gURLRegexFlag == "" {
			log.Fatalf("break: pass <file> <line>, or <line> with --url-regex")
		}
		var result map[string]interface{}
		mustRequest("break", map[string]interface{}{
			"file":      file,
			"line":      mustAtoi(line),
			"condition": gConditionFlag,
			"hitCount":  gHitCountFlag,
			"urlRegex":  gURLRegexFlag,
		}, &result)
		printJSON(result)
	},
}

var breakRmCmd = &cobra.Command{
	Use:   "break-rm <ref>",
	Short: "Remove a breakpoint or logpoint by its reference handle",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("break-rm", map[string]interface{}{"ref": args[0]}, nil)
	},
}

var breakLsCmd = &cobra.Command{
	Use:   "break-ls",
	Short: "List every breakpoint and logpoint",
	Run: func(cmd *cobra.Command, args []string) {
		var result []map[string]interface{}
		mustRequest("break-ls", nil, &result)
		printJSON(result)
	},
}

var breakToggleCmd = &cobra.Command{
	Use:   "break-toggle <ref>",
	Short: "Enable or disable a breakpoint without losing its condition/hit-count",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("break-toggle", map[string]interface{}{"ref": args[0], "enabled": gEnabledFlag}, nil)
	},
}

var breakableCmd = &cobra.Command{
	Use:   "breakable <file> <startLine> <endLine>",
	Short: "List the statement boundaries a breakpoint could actually land on",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		var result []map[string]interface{}
		mustRequest("breakable", map[string]interface{}{
			"file":      args[0],
			"startLine": mustAtoi(args[1]),
			"endLine":   mustAtoi(args[2]),
		}, &result)
		printJSON(result)
	},
}

var logpointCmd = &cobra.Command{
	Use:   "logpoint <file> <line> <template>",
	Short: "Set a logpoint: log a message at file:line without stopping",
	Long: `
A logpoint's template may reference in-scope variables with {name}
placeholders, e.g.:

    jsdbg logpoint app.js 42 "i is now {i}"
`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("logpoint", map[string]interface{}{
			"file":     args[0],
			"line":     mustAtoi(args[1]),
			"template": args[2],
		}, &result)
		printJSON(result)
	},
}

var catchCmd = &cobra.Command{
	Use:   "catch <mode>",
	Short: `Set the exception pause mode: "all", "uncaught", "caught", or "none"`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("catch", map[string]interface{}{"mode": args[0]}, nil)
	},
}
