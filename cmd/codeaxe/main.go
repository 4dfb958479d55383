package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"codeaxe/internal/errors"
)

func main() {
	err := rootCmd.Execute()
	var reported silentError
	if err != nil && !stderrors.As(err, &reported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process status. The informational
// conditions exit 0; a failing symbol provider still fails the process.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.IsNonFatal(err) && errors.CodeOf(err) != errors.ProviderFailure {
		return 0
	}
	return 1
}
