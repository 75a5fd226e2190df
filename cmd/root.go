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
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile        string
	gSessionFlag   string
	gVerboseFlag   bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "jsdbg",
	Short: "jsdbg is a headless debug-session daemon for JavaScript runtimes.\nCopyright (c) Sidharth Kshatriya 2016",
}

// Execute adds all child commands to the root command and runs it. It is
// called by main.main; it only needs to happen once to RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().BoolVarP(&gVerboseFlag, "verbose", "v", false, "print more messages to know what jsdbg is doing")
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.jsdbg.yaml)")
	RootCmd.PersistentFlags().StringVarP(&gSessionFlag, "session", "s", "", "session name; selects which daemon/session directory to talk to (default is derived from the current directory)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.SetConfigName(".jsdbg")
	viper.AddConfigPath("$HOME")
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")

	viper.BindPFlag("session", RootCmd.PersistentFlags().Lookup("session"))
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetDefault("session", "default")
	viper.SetDefault("runtime-executable", "node")

	viper.RegisterAlias("runtime_executable", "runtime-executable")

	if err := viper.ReadInConfig(); err == nil {
		color.Yellow("jsdbg: Using config file: %v", viper.ConfigFileUsed())
	}
}
