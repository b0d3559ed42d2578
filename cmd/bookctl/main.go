// Command bookctl books seats in cinema sessions from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/iliyamo/cinema-session-booking/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx, os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "bookctl:", cli.Explain(err))
		os.Exit(1)
	}
}
