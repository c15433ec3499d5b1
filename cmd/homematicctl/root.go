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
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/edgeo-scada/homematic/homematic"
)

const version = "0.3.0"

var (
	cfgFile     string
	capturePath string
	timeout     time.Duration
	outputFmt   string
	query       string
	verbose     bool
	skipInvalid bool
	workers     int
	logFile     string

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "homematicctl",
	Short: "Inspect HomeMatic devices, paramsets and service messages",
	Long: `homematicctl talks to a HomeMatic interface process (BidCos-RF, BidCos-Wired)
and decodes its device, paramset and service message responses.

Calls are answered from a capture file (YAML, JSON or CBOR) holding recorded
exchanges with the interface process.

Examples:
  # List devices with their channels
  homematicctl -c ccu.yaml device list --channels

  # Show one channel as JSON
  homematicctl -c ccu.yaml -o json device inspect EQ0123456:1

  # Describe the MASTER paramset of a device
  homematicctl -c ccu.yaml param list EQ0123456 MASTER

  # Poll service messages
  homematicctl -c ccu.yaml message watch --interval 5s`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := slog.LevelInfo
		if viper.GetBool("verbose") {
			logLevel = slog.LevelDebug
		}

		var w io.Writer = os.Stderr
		if path := viper.GetString("log-file"); path != "" {
			w = &lumberjack.Logger{
				Filename:   path,
				MaxSize:    10,
				MaxBackups: 3,
				Compress:   true,
			}
		}
		logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: logLevel,
		}))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.homematicctl.yaml)")
	rootCmd.PersistentFlags().StringVarP(&capturePath, "capture", "c", "", "Capture file answering the calls (.yaml, .json, .cbor)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "Per call timeout")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVarP(&query, "query", "q", "", "gjson path applied to json/yaml output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&skipInvalid, "skip-invalid", false, "Skip malformed list entries instead of failing")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 1, "Goroutines decoding list responses")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a rotated file instead of stderr")

	for _, name := range []string{"capture", "timeout", "output", "query", "verbose", "skip-invalid", "workers", "log-file"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(deviceCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(paramCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".homematicctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// newFormatter builds the output formatter from the current configuration
func newFormatter() (*Formatter, error) {
	format, err := ParseOutputFormat(viper.GetString("output"))
	if err != nil {
		return nil, err
	}
	return NewFormatter(format, viper.GetString("query")), nil
}

// createClient opens the configured capture and creates a client on top of
// it. The returned func releases the capture.
func createClient(ctx context.Context) (*homematic.Client, func(), error) {
	path := viper.GetString("capture")
	if path == "" {
		return nil, nil, fmt.Errorf("capture file is required (-c or --capture)")
	}
	if _, ok := homematic.CaptureFormat(path); !ok {
		return nil, nil, fmt.Errorf("unsupported capture file %s", path)
	}

	caller, err := homematic.OpenCapture(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	client, err := homematic.NewClient(caller,
		homematic.WithTimeout(viper.GetDuration("timeout")),
		homematic.WithSkipInvalid(viper.GetBool("skip-invalid")),
		homematic.WithDecodeWorkers(viper.GetInt("workers")),
		homematic.WithLogger(logger),
	)
	if err != nil {
		caller.Close()
		return nil, nil, err
	}

	logger.Debug("capture opened", slog.String("path", path))
	return client, func() { caller.Close() }, nil
}

// reportError prints err once. Decode failures and faults are labelled and
// carry the offending entity address when known.
func reportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	switch {
	case homematic.IsDecodeError(err):
		msg = "invalid response: " + msg
	case homematic.IsFault(err):
		msg = "interface fault: " + msg
	}
	if addr, ok := homematic.EntityAddress(err); ok {
		msg += " (address " + addr + ")"
	}
	fmt.Fprintln(w, "Error:", msg)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("homematicctl version %s\n", version)
	},
}
