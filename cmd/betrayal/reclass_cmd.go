package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wbrozek/betrayal/internal/reclass"
)

func newReclassCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reclass",
		Short: "Open the live-schema reclass runner",
		RunE:  runReclassCommand,
	}
}

func runReclassCommand(cmd *cobra.Command, args []string) error {
	runner, err := reclass.NewRunner(pid)
	if err != nil {
		return err
	}
	fmt.Printf("reclass schema file: %s\n", runner.Path)
	fmt.Println("edit and save it to re-evaluate; Ctrl-C to quit.")

	runner.OnResult = func(text string) {
		fmt.Println(text)
	}
	runner.OnDiagnostic = func(err error) {
		fmt.Fprintln(os.Stderr, "reclass:", err)
	}

	done := make(chan struct{})
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		close(done)
	}()

	return runner.Run(done)
}
