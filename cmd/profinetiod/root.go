// Package main implements the profinetiod CLI, built with cobra
// (grounded on firestige-Otus/cmd/root.go's root+subcommand layout).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:     "profinetiod",
	Short:   "PROFINET IO device-side PPM/LLDP daemon",
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/profinetiod/config.yml",
		"config file path")
	rootCmd.AddCommand(startCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
