// Copyright © 2018 NAME HERE <EMAIL ADDRESS>
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

	"github.com/spf13/cobra"
)

// Verbose turns on extra diagnostic printing across subcommands.
var Verbose bool

// cfgFile is the path to the YAML configuration file consumed by
// serve. Other subcommands ignore it.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "spacepacket",
	Short: "Build, relay, and inspect CCSDS Space Packets",
	Long: `spacepacket is a small toolkit around the CCSDS 133.0-B Space
Packet Protocol: it can serve a live pub/sub relay of packets over a
websocket, synthesize test packets, and decommutate or inspect packet
files against a telemetry dictionary.`,
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "print extra diagnostic information")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML configuration file")
}
