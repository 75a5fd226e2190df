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
	"fmt"

	"github.com/spf13/cobra"
)

var gLimitFlag int
var gFrameFlag string
var gEvalFrameFlag string
var gSearchScriptIDFlag string
var gSearchIsRegexFlag bool
var gSearchCaseSensitiveFlag bool
var gConsoleLevelFlag string
var gConsoleSinceFlag int64
var gConsoleClearFlag bool
var gExceptionsSinceFlag int64

func init() {
	RootCmd.AddCommand(sourceCmd)
	RootCmd.AddCommand(scriptsCmd)
	RootCmd.AddCommand(stackCmd)

	searchCmd.Flags().StringVar(&gSearchScriptIDFlag, "script-id", "", "restrict the search to a single script")
	searchCmd.Flags().BoolVar(&gSearchIsRegexFlag, "regex", false, "treat the query as a regular expression")
	searchCmd.Flags().BoolVar(&gSearchCaseSensitiveFlag, "case-sensitive", false, "match case exactly")
	RootCmd.AddCommand(searchCmd)

	consoleCmd.Flags().IntVar(&gLimitFlag, "limit", 0, "max entries to return (0 means all buffered)")
	consoleCmd.Flags().StringVar(&gConsoleLevelFlag, "level", "", "only show entries at this console level")
	consoleCmd.Flags().Int64Var(&gConsoleSinceFlag, "since", 0, "only show entries newer than this timestamp")
	consoleCmd.Flags().BoolVar(&gConsoleClearFlag, "clear", false, "empty the console buffer after printing")
	RootCmd.AddCommand(consoleCmd)

	exceptionsCmd.Flags().Int64Var(&gExceptionsSinceFlag, "since", 0, "only show entries newer than this timestamp")
	RootCmd.AddCommand(exceptionsCmd)

	evalCmd.Flags().StringVar(&gEvalFrameFlag, "frame", "", "frame handle to evaluate against (default: top frame while paused)")
	RootCmd.AddCommand(evalCmd)

	varsCmd.Flags().StringVar(&gFrameFlag, "frame", "", "frame handle (default: top frame)")
	RootCmd.AddCommand(varsCmd)
	RootCmd.AddCommand(propsCmd)

	RootCmd.AddCommand(sourcemapCmd)
	RootCmd.AddCommand(sourcemapDisableCmd)
}

var sourceCmd = &cobra.Command{
	Use:   "source <scriptId>",
	Short: "Print a loaded script's source, preferring original source-mapped text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("source", map[string]interface{}{"file": args[0]}, &result)
		if src, ok := result["source"].(string); ok {
			fmt.Println(src)
			return
		}
		printJSON(result)
	},
}

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "List every parsed script",
	Run: func(cmd *cobra.Command, args []string) {
		var result []map[string]interface{}
		mustRequest("scripts", nil, &result)
		printJSON(result)
	},
}

var stackCmd = &cobra.Command{
	Use:   "stack",
	Short: "List call frames, most recent first (only valid while paused)",
	Run: func(cmd *cobra.Command, args []string) {
		var result []map[string]interface{}
		mustRequest("stack", nil, &result)
		printJSON(result)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search loaded script source for a literal string or, with --regex, a pattern",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var result []map[string]interface{}
		mustRequest("search", map[string]interface{}{
			"query":         args[0],
			"scriptId":      gSearchScriptIDFlag,
			"isRegex":       gSearchIsRegexFlag,
			"caseSensitive": gSearchCaseSensitiveFlag,
		}, &result)
		printJSON(result)
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Show buffered console.* calls from the target",
	Run: func(cmd *cobra.Command, args []string) {
		var result []map[string]interface{}
		mustRequest("console", map[string]interface{}{
			"limit": gLimitFlag,
			"level": gConsoleLevelFlag,
			"since": gConsoleSinceFlag,
			"clear": gConsoleClearFlag,
		}, &result)
		printJSON(result)
	},
}

var exceptionsCmd = &cobra.Command{
	Use:   "exceptions",
	Short: "Show buffered uncaught/thrown exceptions from the target",
	Run: func(cmd *cobra.Command, args []string) {
		var result []map[string]interface{}
		mustRequest("exceptions", map[string]interface{}{"since": gExceptionsSinceFlag}, &result)
		printJSON(result)
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate a JavaScript expression in the current pause frame, or globally",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var result map[string]interface{}
		mustRequest("eval", map[string]interface{}{"expression": args[0], "frame": gEvalFrameFlag}, &result)
		printJSON(result)
	},
}

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "List the variables visible in a frame's scope chain",
	Run: func(cmd *cobra.Command, args []string) {
		var result []map[string]interface{}
		mustRequest("vars", map[string]interface{}{"frame": gFrameFlag}, &result)
		printJSON(result)
	},
}

var propsCmd = &cobra.Command{
	Use:   "props <ref>",
	Short: "List the own properties of an object reference",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var result []map[string]interface{}
		mustRequest("props", map[string]interface{}{"ref": args[0]}, &result)
		printJSON(result)
	},
}

var sourcemapCmd = &cobra.Command{
	Use:   "sourcemap [scriptId]",
	Short: "Show source-map status for one script, or every mapped script",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		file := ""
		if len(args) > 0 {
			file = args[0]
		}
		var result []map[string]interface{}
		mustRequest("sourcemap", map[string]interface{}{"file": file}, &result)
		printJSON(result)
	},
}

var sourcemapDisableCmd = &cobra.Command{
	Use:   "sourcemap-disable",
	Short: "Stop translating coordinates through loaded source maps",
	Run: func(cmd *cobra.Command, args []string) {
		mustRequest("sourcemap-disable", nil, nil)
	},
}
