// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

// Package cli implements vpctl, the VideoParty admin command line.
package cli

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tomtom215/videoparty/internal/logging"
)

// NewRootCommand builds the vpctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "vpctl",
		Short:         "VideoParty admin tool",
		Long:          "Inspect video URLs, browse recommendations and manage the VideoParty database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Init(logging.Config{
				Level:  lo.Must(cmd.Flags().GetString("log-level")),
				Format: "console",
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("embed-host", "localhost", "Host passed as the Twitch embed parent")

	root.AddCommand(
		newClassifyCommand(),
		newRecommendCommand(),
		newMigrateCommand(),
	)
	return root
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
