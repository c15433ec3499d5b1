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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edgeo-scada/homematic/homematic"
)

var paramCmd = &cobra.Command{
	Use:   "param",
	Short: "Paramset commands",
}

var paramListCmd = &cobra.Command{
	Use:   "list <address> <paramset>",
	Short: "Describe the parameters of a paramset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			return runParamList(ctx, client, f, args[0], args[1])
		})
	},
}

var paramGetCmd = &cobra.Command{
	Use:   "get <address> <paramset>",
	Short: "Read the values of a paramset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			return runParamGet(ctx, client, f, args[0], args[1])
		})
	},
}

var paramPutCmd = &cobra.Command{
	Use:   "put <address> <paramset> KEY=VALUE...",
	Short: "Write values into a paramset",
	Long: `Write one or more values into a paramset.

Values are parsed as null, booleans (true/false/on/off), numbers, or strings.
Quote a value to force a string.

Examples:
  homematicctl -c ccu.yaml param put EQ0123456:1 MASTER TEMPERATURE_OFFSET=1.5
  homematicctl -c ccu.yaml param put EQ0123456 MASTER CYCLIC_INFO_MSG=on 'NAME="Office"'`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, err := parseAssignments(args[2:])
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			if err := client.PutParamset(ctx, args[0], args[1], ps); err != nil {
				return err
			}
			f.Printf("OK: %d value(s) written to %s %s\n", len(ps), args[0], args[1])
			return nil
		})
	},
}

var paramValueCmd = &cobra.Command{
	Use:   "value <address> <key> [value]",
	Short: "Read or write a single value",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			if len(args) == 3 {
				v, err := parseValue(args[2])
				if err != nil {
					return err
				}
				if err := client.SetValue(ctx, args[0], args[1], v); err != nil {
					return err
				}
				f.Printf("OK: %s.%s = %s\n", args[0], args[1], formatValue(v))
				return nil
			}

			v, err := client.GetValue(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if f.Structured() {
				return f.Print(map[string]any{"address": args[0], "key": args[1], "value": v})
			}
			f.Printf("%s.%s = %s\n", args[0], args[1], formatValue(v))
			return nil
		})
	},
}

var paramIDCmd = &cobra.Command{
	Use:   "id <address> <paramset>",
	Short: "Show the layout id of a paramset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			id, err := client.GetParamsetID(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			f.Println(id)
			return nil
		})
	},
}

var paramDetermineCmd = &cobra.Command{
	Use:   "determine <address> <paramset> <parameter>",
	Short: "Let the device determine a parameter",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *homematic.Client, f *Formatter) error {
			if err := client.DetermineParameter(ctx, args[0], args[1], args[2]); err != nil {
				return err
			}
			f.Printf("Determining %s on %s %s\n", args[2], args[0], args[1])
			return nil
		})
	},
}

func init() {
	paramCmd.AddCommand(paramListCmd)
	paramCmd.AddCommand(paramGetCmd)
	paramCmd.AddCommand(paramPutCmd)
	paramCmd.AddCommand(paramValueCmd)
	paramCmd.AddCommand(paramIDCmd)
	paramCmd.AddCommand(paramDetermineCmd)
}

func runParamList(ctx context.Context, client *homematic.Client, f *Formatter, address, paramset string) error {
	desc, err := client.GetParamsetDescription(ctx, address, paramset)
	if err != nil {
		return fmt.Errorf("describe %s %s: %w", address, paramset, err)
	}
	if f.Structured() {
		return f.Print(projectParamset(desc))
	}
	f.PrintTable(
		[]string{"ID", "TYPE", "OPERATIONS", "FLAGS", "DEFAULT", "MIN", "MAX", "UNIT", "VALUES"},
		parameterRows(desc),
	)
	return nil
}

func runParamGet(ctx context.Context, client *homematic.Client, f *Formatter, address, paramset string) error {
	ps, err := client.GetParamset(ctx, address, paramset)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", address, paramset, err)
	}
	if f.Structured() {
		return f.Print(ps)
	}
	f.PrintTable([]string{"ID", "VALUE"}, paramsetRows(ps))
	return nil
}

// parseAssignments parses KEY=VALUE arguments into a paramset
func parseAssignments(args []string) (homematic.Paramset, error) {
	ps := make(homematic.Paramset, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected KEY=VALUE", arg)
		}
		v, err := parseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		ps[key] = v
	}
	return ps, nil
}

// parseValue parses a command line value into a wire value
func parseValue(s string) (homematic.Value, error) {
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "null", "nil":
		return nil, nil
	case "true", "on":
		return true, nil
	case "false", "off":
		return false, nil
	}

	// Quoted string
	if len(s) >= 2 && ((strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"")) ||
		(strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'"))) {
		return s[1 : len(s)-1], nil
	}

	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return i, nil
	}

	if strings.ContainsAny(s, ".eE") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	}

	return s, nil
}
