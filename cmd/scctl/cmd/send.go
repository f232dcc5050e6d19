package cmd

import (
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(sendCmd)
}

var sendCmd = &cobra.Command{
	Use:   "send <address> [args...]",
	Short: "Send one OSC message to the engine",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()

		srv, err := connect()
		if err != nil {
			log.Fatal(err)
		}
		defer func() { _ = srv.Close() }()

		if err := srv.MsgNow(args[0], parseArgs(args[1:])...); err != nil {
			log.Fatal(err)
		}
	},
}

// parseArgs converts command-line strings into the most specific OSC
// argument type each parses as: int, then float, then string.
func parseArgs(raw []string) []any {
	out := make([]any, 0, len(raw))
	for _, r := range raw {
		if i, err := strconv.ParseInt(r, 10, 32); err == nil {
			out = append(out, int32(i))
			continue
		}
		if f, err := strconv.ParseFloat(r, 64); err == nil {
			out = append(out, f)
			continue
		}
		out = append(out, r)
	}
	return out
}
