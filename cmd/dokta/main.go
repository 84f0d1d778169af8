// Command dokta is the command-line client for the dokta booking API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dokta/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Erreur :", client.UserMessage(err))
		stop()
		os.Exit(1)
	}
}
