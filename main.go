// Package main provides the entry point for the pocket-ledger CLI.
package main

import (
	"fmt"
	"os"

	"mzhou/pocket-ledger/cmd/categorize"
	"mzhou/pocket-ledger/cmd/export"
	"mzhou/pocket-ledger/cmd/parse"
	"mzhou/pocket-ledger/cmd/receipt"
	"mzhou/pocket-ledger/cmd/root"
	"mzhou/pocket-ledger/cmd/scan"
	"mzhou/pocket-ledger/cmd/serve"
)

func init() {
	root.Cmd.AddCommand(parse.Cmd)
	root.Cmd.AddCommand(receipt.Cmd)
	root.Cmd.AddCommand(scan.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(export.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
