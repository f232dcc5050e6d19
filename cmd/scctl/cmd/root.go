package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootCmd is scctl's entry point, exported so it can be extended without
// touching core functionality, mirroring ptpcheck/cmd.RootCmd.
var RootCmd = &cobra.Command{
	Use:   "scctl",
	Short: "Swiss Army Knife for a running OSC audio engine",
}

var (
	rootVerboseFlag bool
	rootHostFlag    string
	rootPortFlag    int
	rootTimeoutFlag float64
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&rootVerboseFlag, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().StringVar(&rootHostFlag, "host", "127.0.0.1", "host the audio engine is listening on")
	RootCmd.PersistentFlags().IntVar(&rootPortFlag, "port", 57110, "port the audio engine is listening on")
	RootCmd.PersistentFlags().Float64Var(&rootTimeoutFlag, "timeout", 5, "default timeout, in seconds, for replies")
}

// ConfigureVerbosity sets the log level from the persistent --verbose
// flag. Every subcommand calls this before doing work.
func ConfigureVerbosity() {
	log.SetLevel(log.WarnLevel)
	if rootVerboseFlag {
		log.SetLevel(log.DebugLevel)
	}
}

// Execute runs scctl's root command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
