package main

import (
	"github.com/dspctl/scosc/cmd/scctl/cmd"
)

func main() {
	cmd.Execute()
}
