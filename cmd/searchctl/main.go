// Command searchctl ranks queries against a catalog file from the shell.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
