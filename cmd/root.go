// Copyright 2025 The packetd Authors
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

// Package cmd wires the cobra command tree used by the respd binary.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kvedge/respd/common"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     common.App,
	Short:   "respd is a minimal Redis-compatible in-memory key-value server",
	Version: common.Version,
}

// Execute runs the root command, dispatching to whichever subcommand
// the user invoked.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
