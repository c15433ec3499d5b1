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
	"strings"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/homematic/homematic"
)

var (
	listChannels bool
	deleteReset  bool
	deleteForce  bool
	deleteDefer  bool
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Device and channel commands",
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List devices",
	Long: `List the devices known to the interface process.

Channels referenced by a device but missing from the list are logged as
warnings.

Examples:
  homematicctl -c ccu.yaml device list
  homematicctl -c ccu.yaml device list --channels
  homematicctl -c ccu.yaml -o json -q '#.address' device list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			return runDeviceList(ctx, client, f, listChannels)
		})
	},
}

var deviceInspectCmd = &cobra.Command{
	Use:   "inspect <address>",
	Short: "Show the description of a device or channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			return runDeviceInspect(ctx, client, f, args[0])
		})
	},
}

var deviceDeleteCmd = &cobra.Command{
	Use:   "delete <address>",
	Short: "Delete a device",
	Long: `Delete a device from the interface process.

Examples:
  # Reset the device to factory defaults while deleting it
  homematicctl -c ccu.yaml device delete EQ0123456 --reset

  # Delete once the device is reachable again
  homematicctl -c ccu.yaml device delete EQ0123456 --defer`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var flags homematic.DeleteFlags
		if deleteReset {
			flags |= homematic.DeleteReset
		}
		if deleteForce {
			flags |= homematic.DeleteForce
		}
		if deleteDefer {
			flags |= homematic.DeleteDefer
		}
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			if err := client.DeleteDevice(ctx, args[0], flags); err != nil {
				return err
			}
			f.Printf("Deleted %s (%s)\n", args[0], flags)
			return nil
		})
	},
}

var deviceAbortDeleteCmd = &cobra.Command{
	Use:   "abort-delete <address>",
	Short: "Cancel a deferred delete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			if err := client.AbortDeleteDevice(ctx, args[0]); err != nil {
				return err
			}
			f.Printf("Delete of %s aborted\n", args[0])
			return nil
		})
	},
}

func init() {
	deviceListCmd.Flags().BoolVar(&listChannels, "channels", false, "Show device channels")
	deviceDeleteCmd.Flags().BoolVar(&deleteReset, "reset", false, "Reset the device to factory defaults")
	deviceDeleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Delete even if the device is unreachable")
	deviceDeleteCmd.Flags().BoolVar(&deleteDefer, "defer", false, "Delete once the device is reachable")

	deviceCmd.AddCommand(deviceListCmd)
	deviceCmd.AddCommand(deviceInspectCmd)
	deviceCmd.AddCommand(deviceDeleteCmd)
	deviceCmd.AddCommand(deviceAbortDeleteCmd)
}

// withClient runs fn with a client and formatter built from the current
// configuration
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *homematic.Client, f *Formatter) error) error {
	f, err := newFormatter()
	if err != nil {
		return err
	}
	f.SetWriter(cmd.OutOrStdout())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, done, err := createClient(ctx)
	if err != nil {
		return err
	}
	defer done()

	return fn(ctx, client, f)
}

func runDeviceList(ctx context.Context, client *homematic.Client, f *Formatter, channels bool) error {
	devices, err := client.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	idx := homematic.NewDeviceIndex(devices)

	if f.Structured() {
		views := make([]deviceView, 0, len(devices))
		for _, d := range devices {
			if channels || d.IsDevice() {
				views = append(views, projectDevice(d))
			}
		}
		return f.Print(views)
	}

	f.PrintTable([]string{"TYPE", "ADDRESS", "PARAMSETS"}, deviceTableRows(idx, channels))
	return nil
}

// deviceTableRows lists top level devices, each followed by its channels when
// channels is set
func deviceTableRows(idx *homematic.DeviceIndex, channels bool) [][]string {
	var rows [][]string
	for _, d := range idx.Devices() {
		rows = append(rows, []string{d.Type, d.Address, strings.Join(d.Paramsets, ", ")})
		if !channels {
			continue
		}
		resolved, unresolved := idx.Channels(d)
		for _, ch := range resolved {
			rows = append(rows, []string{"    " + ch.Type, ch.Address, strings.Join(ch.Paramsets, ", ")})
		}
		for _, addr := range unresolved {
			logger.Warn("unknown channel address",
				slog.String("device", d.Address),
				slog.String("channel", addr),
			)
		}
	}
	return rows
}

func runDeviceInspect(ctx context.Context, client *homematic.Client, f *Formatter, address string) error {
	d, err := client.GetDeviceDescription(ctx, address)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", address, err)
	}
	if f.Structured() {
		return f.Print(projectDevice(d))
	}
	pairs, order := deviceRows(d)
	f.PrintKeyValue(pairs, order)
	return nil
}
