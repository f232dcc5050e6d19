package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dspctl/scosc/osc/replyqueue"
)

const watchPollInterval = 250 * time.Millisecond

func init() {
	RootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <address>",
	Short: "Print every message the engine sends to address until interrupted",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		address := args[0]

		srv, err := connect()
		if err != nil {
			log.Fatal(err)
		}
		defer func() { _ = srv.Close() }()

		srv.AddReplyAddress(address, address)
		q := srv.Transport().ReplyQueue(address)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		fmt.Println(color.BlueString("watching %s, ^C to stop", address))
		for {
			select {
			case <-stop:
				return
			default:
			}
			m, err := q.Get(watchPollInterval, false)
			if err != nil {
				if errors.Is(err, replyqueue.ErrTimedOut) {
					continue
				}
				return
			}
			fmt.Println(color.GreenString("%s %v", m.Address, m.Args))
		}
	},
}
