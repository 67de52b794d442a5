package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcox74/lispjit/internal/disasm"
	"github.com/lcox74/lispjit/internal/jit"
)

var disasmCodeSize int

var disasmCmd = &cobra.Command{
	Use:   "disasm <file>",
	Short: "Compile a program and print a disassembly of the emitted code",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src := readSource(args[0])

		prog, err := jit.CompileWithSize(src, disasmCodeSize)
		if err != nil {
			fail(err)
		}
		defer prog.Close()

		listing, err := disasm.Listing(prog.Code(), prog.Addr())
		if err != nil {
			fail(err)
		}
		for _, inst := range listing {
			fmt.Printf("%#08x: % x\t%s\n", inst.Addr, inst.Bytes, inst.Text)
		}
	},
}

func init() {
	disasmCmd.Flags().IntVarP(&disasmCodeSize, "code-size", "c", jit.DefaultCodeSize, "code buffer size in bytes")
}
