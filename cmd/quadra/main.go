// Command quadra approximates definite integrals with composite
// Newton-Cotes rules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/quadra/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "quadra: %v\n", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
