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
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/homematic/homematic"
)

var watchInterval time.Duration

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Service message commands",
}

var messageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active service messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			return runMessageList(ctx, client, f)
		})
	},
}

var messageWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll service messages and print changes",
	Long: `Watch polls the service messages and prints every message that appears,
changes its value or clears.

Examples:
  homematicctl -c ccu.yaml message watch --interval 10s`,
	Args: cobra.NoArgs,
	RunE: runMessageWatch,
}

func init() {
	messageWatchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "Polling interval")

	messageCmd.AddCommand(messageListCmd)
	messageCmd.AddCommand(messageWatchCmd)
}

func runMessageList(ctx context.Context, client *homematic.Client, f *Formatter) error {
	msgs, err := client.GetServiceMessages(ctx)
	if err != nil {
		return fmt.Errorf("service messages: %w", err)
	}
	if f.Structured() {
		return f.Print(projectMessages(msgs))
	}
	if len(msgs) == 0 {
		f.Println("No service messages")
		return nil
	}
	rows := make([][]string, len(msgs))
	for i, m := range msgs {
		rows[i] = []string{m.Address, m.ID, formatValue(m.Value)}
	}
	f.PrintTable([]string{"ADDRESS", "ID", "VALUE"}, rows)
	return nil
}

func runMessageWatch(cmd *cobra.Command, args []string) error {
	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd.SetContext(ctx)

	// Handle interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nStopping watch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
		f.Printf("Watching service messages every %s\n", watchInterval)
		f.Println("Press Ctrl+C to stop")
		f.Println()

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		var prev map[messageKey]homematic.Value
		for {
			msgs, err := client.GetServiceMessages(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("poll failed", "error", err)
			} else {
				cur := indexMessages(msgs)
				for _, c := range diffMessages(prev, cur) {
					f.Printf("[%s] %s\n", time.Now().Format("15:04:05"), c)
				}
				prev = cur
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
}

type messageKey struct {
	Address string
	ID      string
}

func indexMessages(msgs []homematic.ServiceMessage) map[messageKey]homematic.Value {
	out := make(map[messageKey]homematic.Value, len(msgs))
	for _, m := range msgs {
		out[messageKey{m.Address, m.ID}] = m.Value
	}
	return out
}

// messageChange is one difference between two polls
type messageChange struct {
	Kind    string
	Message homematic.ServiceMessage
}

func (c messageChange) String() string {
	return fmt.Sprintf("%-7s %s %s = %s", c.Kind, c.Message.Address, c.Message.ID, formatValue(c.Message.Value))
}

// diffMessages reports new, changed and cleared messages ordered by address
// and id
func diffMessages(prev, cur map[messageKey]homematic.Value) []messageChange {
	var changes []messageChange
	for k, v := range cur {
		old, ok := prev[k]
		switch {
		case !ok:
			changes = append(changes, messageChange{"new", homematic.ServiceMessage{Address: k.Address, ID: k.ID, Value: v}})
		case formatValue(old) != formatValue(v):
			changes = append(changes, messageChange{"changed", homematic.ServiceMessage{Address: k.Address, ID: k.ID, Value: v}})
		}
	}
	for k, v := range prev {
		if _, ok := cur[k]; !ok {
			changes = append(changes, messageChange{"cleared", homematic.ServiceMessage{Address: k.Address, ID: k.ID, Value: v}})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		a, b := changes[i].Message, changes[j].Message
		if a.Address != b.Address {
			return a.Address < b.Address
		}
		return a.ID < b.ID
	})
	return changes
}
