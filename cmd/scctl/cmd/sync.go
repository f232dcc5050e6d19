package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Round-trip a /sync against the engine and print the latency",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		srv, err := connect()
		if err != nil {
			log.Fatal(err)
		}
		defer func() { _ = srv.Close() }()

		start := time.Now()
		if err := srv.Sync(timeout()); err != nil {
			log.Fatal(err)
		}
		fmt.Println(color.GreenString("synced in %s", time.Since(start)))
	},
}
