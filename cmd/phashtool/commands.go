// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/signwise/phash"
)

// newHashCmd creates the 'hash' command
func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>...",
		Short: "Print the perceptual hash of each image",
		Long:  `Decode each image (JPEG, PNG, GIF or WebP) and print its 16 hex digit pHash.`,
		Example: `  phashtool hash stop.jpg
  phashtool hash photos/*.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				hash, err := phash.ComputeBytes(data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(out, "%s  %s  (%s)\n", hash, path, humanize.Bytes(uint64(len(data))))
			}
			return nil
		},
	}
}

// newDistanceCmd creates the 'distance' command
func newDistanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance <hash> <hash>",
		Short: "Print the Hamming distance between two hex hashes",
		Long: `Print the number of differing bits between two hex hashes.
Hashes of different lengths are reported as 64, the maximum for a 64-bit hash.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := phash.HammingDistance(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

// newCheckCmd creates the 'check' command
func newCheckCmd() *cobra.Command {
	var threshold, bits int

	cmd := &cobra.Command{
		Use:   "check <hash> <history-hash>...",
		Short: "Check a hash against a list of earlier hashes",
		Long: `Run the duplicate detector: the first history hash within the threshold
is reported as the match. With no match the smallest distance is shown.`,
		Example: `  phashtool check 00ff00ff00ff00ff 00ff00ff00ff00fe
  phashtool check 00ff00ff00ff00ff 0000000000000000 --threshold 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detector, err := phash.NewDetector(threshold, bits)
			if err != nil {
				return err
			}

			history := make([]phash.HashRecord, 0, len(args)-1)
			for i, h := range args[1:] {
				history = append(history, phash.HashRecord{
					ID:    fmt.Sprintf("#%d", i+1),
					PHash: phash.Normalize(h),
				})
			}

			verdict, err := detector.CheckDuplicate("", phash.Normalize(args[0]), history)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verdict.IsDuplicate {
				fmt.Fprintf(out, "duplicate of %s (%s) at distance %d\n", verdict.MatchID, verdict.Match, verdict.Distance)
			} else {
				fmt.Fprintf(out, "not a duplicate (closest distance %d, threshold %d)\n", verdict.Distance, detector.Threshold)
			}
			fmt.Fprintf(out, "compared %d of %d\n", verdict.Compared, len(history))
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", phash.DefaultThreshold, "Max Hamming distance counted as duplicate")
	cmd.Flags().IntVar(&bits, "bits", phash.DefaultBits, "Hash width in bits")

	return cmd
}
