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
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/spacepacket"
	"github.com/lumen-space/spacepacket/transfer"
)

var (
	sendApid    uint16
	sendCount   int
	sendPattern uint8
	sendSize    int
	sendBps     int
	sendOut     string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Generate a stream of synthetic test packets",
	Long: `send synthesizes a run of CCSDS Space Packets addressed to a chosen
APID, filled with a repeating byte pattern, and writes them
back-to-back to a file or to stdout. Sequence counts are stamped by a
transfer service, so the output is a valid packet stream a relay or
decommutator can consume directly. It is meant for exercising a relay
or a downstream decommutator without real telemetry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend()
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().Uint16Var(&sendApid, "apid", 100, "application process identifier for the generated packets")
	sendCmd.Flags().IntVarP(&sendCount, "count", "n", 10, "number of packets to generate")
	sendCmd.Flags().Uint8Var(&sendPattern, "pattern", 0xAA, "repeating fill byte for the packet user data")
	sendCmd.Flags().IntVar(&sendSize, "size", 32, "user data size in octets")
	sendCmd.Flags().IntVar(&sendBps, "bps", 0, "limit generation to this many bits per second (0 = unlimited)")
	sendCmd.Flags().StringVarP(&sendOut, "out", "o", "", "output file (defaults to stdout)")
}

// fileSubLayer implements transfer.SubLayer by appending every
// transmitted packet's bytes to an io.Writer.
type fileSubLayer struct {
	w io.Writer
}

func (f fileSubLayer) PushOutbound(buf bitio.Buffer) error {
	_, err := f.w.Write(buf.Bytes())
	return err
}

func runSend() error {
	if sendApid == spacepacket.ApidIdle {
		return fmt.Errorf("apid %d is the reserved idle value, choose another", spacepacket.ApidIdle)
	}
	if sendSize <= 0 {
		return fmt.Errorf("--size must be positive")
	}

	out := io.Writer(os.Stdout)
	if sendOut != "" {
		f, err := os.Create(sendOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	svc := transfer.NewService()
	svc.SetSubLayer(fileSubLayer{w: out})

	startTime := time.Now()
	totalBits := int64(0)
	targetTime := startTime

	for i := 0; i < sendCount; i++ {
		buf := bitio.NewBuffer(spacepacket.PrimaryHeaderSize + sendSize)
		b := spacepacket.NewBuilder(buf, spacepacket.EmptySecondaryHeader())
		b.Primary.Apid.SetValue(sendApid)
		b.Primary.SequenceFlags.SetValue(spacepacket.SequenceUnsegmented)
		for j := 0; j < sendSize; j++ {
			b.Data().Put(uint64(sendPattern), 8, false)
		}

		if err := svc.Transmit(b); err != nil {
			return err
		}

		if sendBps > 0 {
			totalBits += 8 * int64(b.Size())
			targetTime = startTime.Add(time.Duration(float64(totalBits) / float64(sendBps) * float64(time.Second)))
			if sleep := time.Until(targetTime); sleep > 0 {
				time.Sleep(sleep)
			}
		}
	}

	if Verbose {
		fmt.Fprintf(os.Stderr, "sent %d packets to apid %d\n", sendCount, sendApid)
	}
	return nil
}
