package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"artwork-sequencer/internal/version"
)

func main() {
	root := newRootCommand()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version.String()),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
