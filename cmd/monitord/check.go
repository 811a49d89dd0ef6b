/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carverauto/monitord/pkg/agent"
)

const (
	outputFormatText = "text"
	outputFormatJSON = "json"
)

var (
	errCriticalDown  = errors.New("critical service down")
	errUnknownOutput = errors.New("unknown output format")
)

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")

	switch format {
	case outputFormatText, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownOutput, format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe services and resources once",
		Long: "Probe every enabled service and evaluate resource thresholds once, without restarts, " +
			"recovery actions or notifications. Exits 1 when a critical service is down.",
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	cmd.Flags().StringP("output", "o", outputFormatText, "output format (text or json)")

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	run, err := newOneShot(cmd)
	if err != nil {
		return err
	}
	defer run.Close()

	summary := run.server.Check(cmd.Context())

	if format == outputFormatJSON {
		err = writeJSON(cmd.OutOrStdout(), summary)
	} else {
		err = printSummary(cmd.OutOrStdout(), &summary)
	}

	if err != nil {
		return err
	}

	if summary.CriticalDown() {
		return errCriticalDown
	}

	return nil
}

func printSummary(out io.Writer, summary *agent.Summary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "SERVICE\tSTATUS\tMETHOD\tCRITICAL\tMESSAGE")

	for i := range summary.Services {
		res := &summary.Services[i]

		status := "down"
		if res.Running {
			status = "up"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", res.Name, status, res.CheckMethod, res.Critical, res.Message)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "RESOURCE\tSTATUS\tVALUE")

	res := &summary.Resources
	if res.CPULoad != nil {
		fmt.Fprintf(w, "cpu\t%s\tload %.2f %.2f %.2f\n",
			breachStatus(res.CPULoad.ThresholdExceeded), res.CPULoad.Load1Min, res.CPULoad.Load5Min, res.CPULoad.Load15Min)
	}

	if res.Memory != nil {
		fmt.Fprintf(w, "memory\t%s\t%.1f%% available\n",
			breachStatus(res.Memory.ThresholdExceeded), res.Memory.AvailablePercent)
	}

	if res.Disk != nil {
		for _, mount := range res.Disk.MountPoints {
			fmt.Fprintf(w, "disk %s\t%s\t%.1f%% free\n",
				mount.Path, breachStatus(mount.ThresholdExceeded), mount.FreePercent)
		}
	}

	if res.Error != "" {
		fmt.Fprintf(w, "error\t-\t%s\n", res.Error)
	}

	return w.Flush()
}

func breachStatus(exceeded bool) string {
	if exceeded {
		return "exceeded"
	}

	return "ok"
}

func newTestChannelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-channels",
		Short: "Test every enabled notification channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, err := newOneShot(cmd)
			if err != nil {
				return err
			}
			defer run.Close()

			results := run.server.TestChannels(cmd.Context())

			return printChannelResults(cmd.OutOrStdout(), results)
		},
	}
}

func printChannelResults(out io.Writer, results map[string]bool) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(out, "No notification channels enabled")
		return err
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}

	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tRESULT")

	for _, name := range names {
		result := "FAILED"
		if results[name] {
			result = "OK"
		}

		fmt.Fprintf(w, "%s\t%s\n", name, result)
	}

	return w.Flush()
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print current system statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, err := newOneShot(cmd)
			if err != nil {
				return err
			}
			defer run.Close()

			return writeJSON(cmd.OutOrStdout(), run.server.Stats(cmd.Context()))
		},
	}
}
