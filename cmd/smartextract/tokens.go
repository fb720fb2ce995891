package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Count the tokens in a document's extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	comps, err := setup(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	_, out, err := extractFile(cmd, comps.Service, args[0])
	if err != nil {
		return err
	}
	doc := out.Document
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tokens, %d characters (%s extraction)\n", doc.Filename, doc.Tokens, doc.Chars, doc.Method)
	return nil
}
