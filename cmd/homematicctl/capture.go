// Copyright 2025 Edgeo SCADA
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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/homematic/homematic"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture file commands",
}

var captureConvertCmd = &cobra.Command{
	Use:   "convert <src> <dst>",
	Short: "Convert a capture file between YAML, JSON and CBOR",
	Long: `Convert rewrites a capture file in another format. Formats are picked
from the file extensions (.yaml, .yml, .json, .cbor).

Examples:
  homematicctl capture convert ccu.yaml ccu.cbor`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			if _, ok := homematic.CaptureFormat(path); !ok {
				return fmt.Errorf("unsupported capture file %s", path)
			}
		}
		if err := homematic.ConvertCapture(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	captureCmd.AddCommand(captureConvertCmd)
}
