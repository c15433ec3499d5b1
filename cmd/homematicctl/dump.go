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
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/edgeo-scada/homematic/homematic"
)

var (
	dumpFile      string
	dumpParamsets []string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump all devices with their paramsets",
	Long: `Dump reads every device and channel together with the descriptions and
values of its paramsets.

This is useful for configuration backup, documentation, or debugging.
Paramsets that fail to read are logged and left out.

Examples:
  # Dump everything as JSON to stdout
  homematicctl -c ccu.yaml dump

  # Dump MASTER paramsets only, as YAML, to a file
  homematicctl -c ccu.yaml -o yaml dump --paramsets MASTER -f backup.yaml`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpFile, "file", "f", "", "Output file (default: stdout)")
	dumpCmd.Flags().StringSliceVar(&dumpParamsets, "paramsets", []string{homematic.ParamsetMaster, homematic.ParamsetValues}, "Paramsets to read")
}

// DumpParamset holds one paramset of an entry
type DumpParamset struct {
	Description map[string]parameterView `json:"description,omitempty"`
	Values      homematic.Paramset       `json:"values,omitempty"`
}

// DumpEntry is one device or channel
type DumpEntry struct {
	Device    deviceView              `json:"device"`
	Paramsets map[string]DumpParamset `json:"paramsets"`
}

// DumpResult is the document written by dump
type DumpResult struct {
	Timestamp time.Time   `json:"timestamp"`
	Entries   []DumpEntry `json:"entries"`
}

func runDump(cmd *cobra.Command, args []string) error {
	f, err := newFormatter()
	if err != nil {
		return err
	}
	if !f.Structured() {
		f = NewFormatter(FormatJSON, f.query)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, done, err := createClient(ctx)
	if err != nil {
		return err
	}
	defer done()

	result, err := collectDump(ctx, client, dumpParamsets, viper.GetInt("workers"))
	if err != nil {
		return err
	}

	if dumpFile != "" {
		out, err := os.Create(dumpFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
		f.SetWriter(out)
	} else {
		f.SetWriter(cmd.OutOrStdout())
	}

	if err := f.Print(result); err != nil {
		return err
	}
	if dumpFile != "" {
		fmt.Fprintf(os.Stderr, "Dump of %d entries written to %s\n", len(result.Entries), dumpFile)
	}
	return nil
}

// collectDump reads the requested paramsets of every entry, running up to
// workers entries at a time
func collectDump(ctx context.Context, client *homematic.Client, paramsets []string, workers int) (*DumpResult, error) {
	devices, err := client.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	result := &DumpResult{
		Timestamp: time.Now(),
		Entries:   make([]DumpEntry, len(devices)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, d := range devices {
		i, d := i, d
		g.Go(func() error {
			entry := DumpEntry{
				Device:    projectDevice(d),
				Paramsets: make(map[string]DumpParamset),
			}
			for _, key := range paramsets {
				if !d.HasParamset(key) {
					continue
				}
				entry.Paramsets[key] = dumpParamset(gctx, client, d.Address, key)
			}
			result.Entries[i] = entry
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func dumpParamset(ctx context.Context, client *homematic.Client, address, key string) DumpParamset {
	var ps DumpParamset
	desc, err := client.GetParamsetDescription(ctx, address, key)
	if err != nil {
		logger.Warn("skipping paramset description",
			slog.String("address", address),
			slog.String("paramset", key),
			slog.String("error", err.Error()),
		)
	} else {
		ps.Description = projectParamset(desc)
	}

	// LINK paramsets are per peer and cannot be read without one
	if slices.Contains([]string{homematic.ParamsetMaster, homematic.ParamsetValues}, key) {
		values, err := client.GetParamset(ctx, address, key)
		if err != nil {
			logger.Warn("skipping paramset values",
				slog.String("address", address),
				slog.String("paramset", key),
				slog.String("error", err.Error()),
			)
		} else {
			ps.Values = values
		}
	}
	return ps
}
