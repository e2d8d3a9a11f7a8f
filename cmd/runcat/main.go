package main

import (
	"fmt"
	"os"

	"github.com/runcat-io/runcat/cmd/runcat/cmd"
	rcerrors "github.com/runcat-io/runcat/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprint(os.Stderr, rcerrors.FormatForCLI(err))
		os.Exit(1)
	}
}
