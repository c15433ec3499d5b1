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
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/edgeo-scada/homematic/homematic"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long: `Shell provides a REPL for exploring devices and paramsets.

Commands:
  devices [channels]             - List devices
  use <address>                  - Select a device or channel
  inspect [address]              - Show a description
  params <paramset>              - Describe a paramset of the selection
  get <paramset>                 - Read a paramset of the selection
  value <key> [value]            - Read or write a value of the selection
  messages                       - List service messages
  metrics                        - Show client metrics
  help                           - Show help
  exit                           - Exit the shell

Examples:
  homematic> devices channels
  homematic> use EQ0123456:1
  homematic[EQ0123456:1]> params MASTER
  homematic[EQ0123456:1]> value STATE true`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, done, err := createClient(ctx)
	if err != nil {
		return err
	}
	defer done()

	f, err := newFormatter()
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "homematic> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	f.SetWriter(rl.Stdout())
	f.Println("HomeMatic Interactive Shell")
	f.Println("Type 'help' for available commands, 'exit' to quit")
	f.Println()

	s := &shell{client: client, f: f}
	for {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if s.exec(ctx, line) {
			return nil
		}
	}
}

// shell holds the state of an interactive session
type shell struct {
	client   *homematic.Client
	f        *Formatter
	selected string
}

func (s *shell) prompt() string {
	if s.selected != "" {
		return fmt.Sprintf("homematic[%s]> ", s.selected)
	}
	return "homematic> "
}

// exec runs one input line and returns true when the session should end
func (s *shell) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	command := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch command {
	case "exit", "quit", "q":
		s.f.Println("Goodbye!")
		return true

	case "help", "?":
		s.printHelp()

	case "devices", "ls":
		channels := len(args) > 0 && args[0] == "channels"
		err = runDeviceList(ctx, s.client, s.f, channels)

	case "use":
		if len(args) < 1 {
			s.f.Println("Usage: use <address>")
			return false
		}
		s.selected = args[0]
		s.f.Printf("Selected %s\n", s.selected)

	case "inspect":
		addr := s.selected
		if len(args) > 0 {
			addr = args[0]
		}
		if addr == "" {
			s.f.Println("Usage: inspect <address>")
			return false
		}
		err = runDeviceInspect(ctx, s.client, s.f, addr)

	case "params", "get":
		if s.selected == "" {
			s.f.Println("Nothing selected. Use 'use <address>' first.")
			return false
		}
		if len(args) < 1 {
			s.f.Printf("Usage: %s <paramset>\n", command)
			return false
		}
		paramset := strings.ToUpper(args[0])
		if command == "params" {
			err = runParamList(ctx, s.client, s.f, s.selected, paramset)
		} else {
			err = runParamGet(ctx, s.client, s.f, s.selected, paramset)
		}

	case "value":
		if s.selected == "" {
			s.f.Println("Nothing selected. Use 'use <address>' first.")
			return false
		}
		if len(args) < 1 {
			s.f.Println("Usage: value <key> [value]")
			return false
		}
		err = s.value(ctx, args[0], strings.Join(args[1:], " "))

	case "messages":
		err = runMessageList(ctx, s.client, s.f)

	case "metrics":
		s.printMetrics()

	default:
		s.f.Printf("Unknown command: %s (type 'help' for available commands)\n", command)
	}

	if err != nil {
		s.f.Printf("Error: %v\n", err)
	}
	return false
}

func (s *shell) value(ctx context.Context, key, raw string) error {
	if raw == "" {
		v, err := s.client.GetValue(ctx, s.selected, key)
		if err != nil {
			return err
		}
		s.f.Printf("%s.%s = %s\n", s.selected, key, formatValue(v))
		return nil
	}

	v, err := parseValue(raw)
	if err != nil {
		return err
	}
	if err := s.client.SetValue(ctx, s.selected, key, v); err != nil {
		return err
	}
	s.f.Printf("OK: %s.%s = %s\n", s.selected, key, formatValue(v))
	return nil
}

func (s *shell) printHelp() {
	s.f.Println(`
Available commands:
  devices [channels]        List devices, optionally with their channels
  use <address>             Select a device or channel to work with
  inspect [address]         Show the description of the selection or address
  params <paramset>         Describe a paramset (MASTER, VALUES, ...)
  get <paramset>            Read the values of a paramset
  value <key> [value]       Read or write a single value
  messages                  List active service messages
  metrics                   Show client metrics
  help                      Show this help message
  exit                      Exit the shell`)
}

func (s *shell) printMetrics() {
	m := s.client.Metrics().Snapshot()

	s.f.Println("\nClient Metrics:")
	s.f.Printf("  Uptime:              %s\n", m.Uptime.Round(time.Second))
	s.f.Printf("  Calls Sent:          %d\n", m.CallsSent)
	s.f.Printf("  Calls Succeeded:     %d\n", m.CallsSucceeded)
	s.f.Printf("  Calls Failed:        %d\n", m.CallsFailed)
	s.f.Printf("  Faults Received:     %d\n", m.FaultsReceived)
	s.f.Printf("  Entities Decoded:    %d\n", m.EntitiesDecoded)
	s.f.Printf("  Entities Skipped:    %d\n", m.EntitiesSkipped)
	s.f.Printf("  Decode Failures:     %d\n", m.DecodeFailures)

	if m.Latency.Count > 0 {
		s.f.Printf("  Avg Latency:         %s\n", m.Latency.Avg.Round(time.Microsecond))
		s.f.Printf("  Min Latency:         %s\n", m.Latency.Min.Round(time.Microsecond))
		s.f.Printf("  Max Latency:         %s\n", m.Latency.Max.Round(time.Microsecond))
	}
	s.f.Println()
}
