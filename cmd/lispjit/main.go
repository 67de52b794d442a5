// Command lispjit compiles and runs the minimal Lisp dialect implemented
// by this repository's JIT: parse with internal/reader, compile with
// internal/compiler, execute via internal/jit.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lispjit",
	Short: "A just-in-time compiler for a minimal Lisp dialect",
}

func init() {
	rootCmd.AddCommand(runCmd, treeCmd, disasmCmd)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func readSource(path string) []byte {
	src, err := os.ReadFile(path)
	if err != nil {
		fail(err)
	}
	return src
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fail(err)
	}
}
