package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcox74/lispjit/internal/jit"
	"github.com/lcox74/lispjit/internal/value"
)

var (
	runHeapWords int
	runCodeSize  int
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and execute a program, printing its result",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src := readSource(args[0])

		prog, err := jit.CompileWithSize(src, runCodeSize)
		if err != nil {
			fail(err)
		}
		defer prog.Close()

		heap := make([]byte, runHeapWords*8)
		result := prog.Invoke(heap)
		fmt.Println(value.Format(result))
	},
}

func init() {
	runCmd.Flags().IntVarP(&runHeapWords, "heap-words", "n", 1024, "heap size in 8-byte words")
	runCmd.Flags().IntVarP(&runCodeSize, "code-size", "c", jit.DefaultCodeSize, "code buffer size in bytes")
}
