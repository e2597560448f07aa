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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/decom"
	"github.com/lumen-space/spacepacket/spacepacket"
)

var inspectDictionaryPath string

var inspectCmd = &cobra.Command{
	Use:   "inspect [file patterns...]",
	Short: "Print header fields (and, with a dictionary, named points) for a packet file",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("requires at least one file pattern")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectDictionaryPath, "dictionary", "d", "", "path of a telemetry dictionary to decommutate against")
}

func runInspect(patterns []string) error {
	var dict *decom.Dictionary
	if inspectDictionaryPath != "" {
		var err error
		dict, err = decom.LoadDictionary(inspectDictionaryPath)
		if err != nil {
			return fmt.Errorf("loading dictionary: %w", err)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("expanding pattern %s: %w", pattern, err)
		}
		for _, filename := range matches {
			if err := inspectFile(filename, dict); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			}
		}
	}
	return nil
}

func inspectFile(filename string, dict *decom.Dictionary) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	packetIndex := 0
	return spacepacket.ReadPackets(f, func(raw []byte) {
		packetIndex++
		printPacket(filename, packetIndex, raw, dict)
	})
}

func printPacket(filename string, index int, raw []byte, dict *decom.Dictionary) {
	buf := bitio.Borrow(raw)
	extractor := spacepacket.NewExtractor(buf, spacepacket.EmptySecondaryHeader())

	apid := extractor.Primary.Apid.Value()
	fmt.Printf("%s[%d]: apid=%d seq=%d len=%d idle=%v\n",
		filename, index, apid, extractor.Primary.SequenceCount.Value(), len(raw), extractor.Primary.IsIdle())

	if dict == nil {
		return
	}
	pkt, ok := dict.PacketByAPID(int32(apid))
	if !ok {
		return
	}
	for _, pt := range pkt.Points {
		v, err := pt.Value(buf)
		if err != nil {
			fmt.Printf("    %s: error: %v\n", pt.Name, err)
			continue
		}
		fmt.Printf("    %s = %v\n", pt.Name, v)
	}
}
