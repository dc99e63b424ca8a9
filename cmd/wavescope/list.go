package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dudk/wavescope/portaudio"
)

type listCommand struct{}

func (cmd *listCommand) Name() string {
	return "list"
}

func (cmd *listCommand) Help() string {
	return "Show the list of available audio devices"
}

func (cmd *listCommand) Register(fs *flag.FlagSet) {}

func (cmd *listCommand) Run() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tCHANNELS\tDEFAULT\tNAME")
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\n", d.ID, d.Kind, d.Channels, d.Default, d.Name)
	}
	return w.Flush()
}
