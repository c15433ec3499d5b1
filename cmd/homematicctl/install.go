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
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/homematic/homematic"
)

var (
	installDuration time.Duration
	installReset    bool
	installAddress  string
	keyReset        bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Teach-in mode commands",
}

var installOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable teach-in mode",
	Long: `Enable teach-in mode.

Examples:
  # Default duration
  homematicctl -c ccu.yaml install on

  # Five minutes, resetting taught-in devices
  homematicctl -c ccu.yaml install on --duration 5m --reset

  # Only accept the device with the given serial
  homematicctl -c ccu.yaml install on --duration 1m --address EQ0123456`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			return setInstallMode(ctx, client, f, true)
		})
	},
}

var installOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable teach-in mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			return setInstallMode(ctx, client, f, false)
		})
	},
}

var installStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the remaining teach-in time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			remaining, err := client.GetInstallMode(ctx)
			if err != nil {
				return err
			}
			if f.Structured() {
				return f.Print(map[string]any{"active": remaining > 0, "remainingSeconds": int64(remaining / time.Second)})
			}
			if remaining == 0 {
				f.Println("Teach-in mode is off")
				return nil
			}
			f.Printf("Teach-in mode is on, %s remaining\n", remaining)
			return nil
		})
	},
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "AES key commands",
}

var keyMismatchCmd = &cobra.Command{
	Use:   "mismatch",
	Short: "Show the last device that failed AES authentication",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			addr, err := client.GetKeyMismatchDevice(ctx, keyReset)
			if err != nil {
				return err
			}
			if addr == "" {
				f.Println("No key mismatch")
				return nil
			}
			f.Println(addr)
			return nil
		})
	},
}

var keyTempCmd = &cobra.Command{
	Use:   "temp <passphrase>",
	Short: "Set the temporary key used for teach-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			if err := client.SetTempKey(ctx, args[0]); err != nil {
				return err
			}
			f.Println("Temporary key set")
			return nil
		})
	},
}

func init() {
	installOnCmd.Flags().DurationVar(&installDuration, "duration", 0, "Teach-in duration (default: interface default)")
	installOnCmd.Flags().BoolVar(&installReset, "reset", false, "Reset devices to factory defaults while teaching in")
	installOnCmd.Flags().StringVar(&installAddress, "address", "", "Only teach in the device with this serial")
	keyMismatchCmd.Flags().BoolVar(&keyReset, "reset", false, "Clear the reported device")

	installCmd.AddCommand(installOnCmd)
	installCmd.AddCommand(installOffCmd)
	installCmd.AddCommand(installStatusCmd)
	keyCmd.AddCommand(keyMismatchCmd)
	keyCmd.AddCommand(keyTempCmd)
}

func setInstallMode(ctx context.Context, client *homematic.Client, f *Formatter, on bool) error {
	var err error
	switch {
	case on && installAddress != "":
		if installDuration <= 0 {
			return fmt.Errorf("--address requires --duration")
		}
		err = client.SetInstallModeForAddress(ctx, on, installDuration, installAddress)
	case on && (installDuration > 0 || installReset):
		if installDuration <= 0 {
			return fmt.Errorf("--reset requires --duration")
		}
		mode := homematic.InstallModeNormal
		if installReset {
			mode = homematic.InstallModeReset
		}
		err = client.SetInstallModeWithTimeout(ctx, on, installDuration, mode)
	default:
		err = client.SetInstallMode(ctx, on)
	}
	if err != nil {
		return err
	}
	if on {
		f.Println("Teach-in mode enabled")
	} else {
		f.Println("Teach-in mode disabled")
	}
	return nil
}
