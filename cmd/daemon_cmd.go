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
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentdbg/jsdbg/daemon"
)

var gSessionDirFlag string

func init() {
	RootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().StringVar(&gSessionDirFlag, "session-dir", "", "session directory this daemon instance serves")
	daemonCmd.Hidden = true
}

// daemonCmd is the hidden entry point launch/attach spawn as a detached
// child when no daemon is already listening for the session (spec §6/§11).
// Never invoked directly by a human; exists so `os/exec` can re-run this
// same binary as the long-lived background process.
var daemonCmd = &cobra.Command{
	Use:    "__daemon",
	Short:  "internal: run the jsdbg session daemon in the foreground",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		if gSessionDirFlag == "" {
			log.Fatal("jsdbg __daemon: --session-dir is required")
		}

		logger, err := newDaemonLogger(filepath.Join(gSessionDirFlag, "daemon.log"))
		if err != nil {
			log.Fatalf("jsdbg __daemon: failed to open daemon.log: %v", err)
		}
		defer logger.Sync()

		srv := daemon.New(gSessionDirFlag, logger)
		if err := srv.Run(); err != nil {
			logger.Fatal("daemon exited", zap.Error(err))
		}
	},
}

// newDaemonLogger builds the daemon's zap logger, writing JSON lines to
// logPath instead of the console output a foreground dontbug process
// would use, since this process has no attached terminal once spawned.
func newDaemonLogger(logPath string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	return cfg.Build()
}
