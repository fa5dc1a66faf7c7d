// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package cli

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tomtom215/videoparty/internal/logging"
	"github.com/tomtom215/videoparty/internal/recommend"
	"github.com/tomtom215/videoparty/internal/video"
)

func newRecommendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Browse the built-in recommendation catalog",
	}
	cmd.PersistentFlags().IntP("limit", "n", 3, "Number of items (1-20)")
	cmd.PersistentFlags().Int64("seed", 0, "Sampling seed, 0 for a random one")

	cmd.AddCommand(
		&cobra.Command{
			Use:       "mood <mood>",
			Short:     "Items for a mood",
			Long:      "Items for a mood: " + strings.Join(recommend.Moods(), ", ") + ". Unknown moods fall back to lofi.",
			Args:      cobra.ExactArgs(1),
			ValidArgs: recommend.Moods(),
			RunE: func(cmd *cobra.Command, args []string) error {
				engine, limit, err := engineFromFlags(cmd)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), engine.ByMood(args[0], limit))
			},
		},
		&cobra.Command{
			Use:   "trending",
			Short: "Trending items",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				engine, limit, err := engineFromFlags(cmd)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), engine.Trending(limit))
			},
		},
	)
	return cmd
}

func engineFromFlags(cmd *cobra.Command) (*recommend.Engine, int, error) {
	limit := lo.Must(cmd.Flags().GetInt("limit"))
	if limit < 1 || limit > 20 {
		return nil, 0, fmt.Errorf("limit must be between 1 and 20, got %d", limit)
	}

	seed := lo.Must(cmd.Flags().GetInt64("seed"))
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	classifier := video.NewClassifier(lo.Must(cmd.Flags().GetString("embed-host")))
	engine := recommend.NewEngine(recommend.DefaultCatalog(classifier), rand.NewSource(seed), logging.Logger())
	return engine, limit, nil
}
