package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcox74/lispjit/internal/reader"
)

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Parse a program and print its Syntax Tree",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src := readSource(args[0])
		forms, err := reader.ReadAll(src)
		if err != nil {
			fail(err)
		}
		for _, f := range forms {
			fmt.Println(f.String())
		}
	},
}
