/*
Command phashtool inspects perceptual hashes the way the SignWise server
computes and compares them.

Usage:

	phashtool hash stop.jpg yield.png
	phashtool distance 00ff00ff00ff00ff 00ff00ff00ff00fe
	phashtool check 00ff00ff00ff00ff 00ff00ff00ff00fe ffffffffffffffff --threshold 5
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "phashtool",
		Short: "Compute and compare perceptual image hashes",
		Long: `phashtool computes 64-bit perceptual hashes for images and compares
hex hashes by Hamming distance, using the same rules as the duplicate
detector in the SignWise server.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newHashCmd())
	rootCmd.AddCommand(newDistanceCmd())
	rootCmd.AddCommand(newCheckCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
