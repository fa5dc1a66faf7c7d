// VideoParty - Synchronized Video Watching Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/videoparty

package cli

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tomtom215/videoparty/internal/models"
	"github.com/tomtom215/videoparty/internal/video"
)

func newClassifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "classify <url>...",
		Short:   "Print the video descriptor of each URL",
		Example: "  vpctl classify https://youtu.be/dQw4w9WgXcQ https://vimeo.com/76979871",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier := video.NewClassifier(lo.Must(cmd.Flags().GetString("embed-host")))

			results := lo.Map(args, func(raw string, _ int) models.AnalyzedVideo {
				return models.AnalyzedVideo{
					Descriptor:  classifier.Classify(raw),
					OriginalURL: raw,
				}
			})
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
}
