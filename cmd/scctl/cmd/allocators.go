package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dspctl/scosc/alloc"
)

func init() {
	RootCmd.AddCommand(allocatorsCmd)
}

var allocatorsCmd = &cobra.Command{
	Use:   "allocators",
	Short: "Print this client's ID allocator ranges",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()

		srv, err := connect()
		if err != nil {
			log.Fatal(err)
		}
		defer func() { _ = srv.Close() }()

		ranges := srv.Allocators()
		rows := []struct {
			name string
			a    *alloc.Allocator
		}{
			{"node", ranges.NodeIDs},
			{"buffer", ranges.BufferIDs},
			{"audio bus", ranges.AudioBusIDs},
			{"control bus", ranges.ControlBusIDs},
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"kind", "low", "high"})
		for _, r := range rows {
			low, high := r.a.Range()
			table.Append([]string{r.name, fmt.Sprintf("%d", low), fmt.Sprintf("%d", high)})
		}
		table.Render()

		fmt.Printf("client_id=%d max_logins=%d default_group=%d\n", srv.ClientID(), srv.MaxLogins(), srv.DefaultGroup())
	},
}
