package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	extractOut  string
	extractJSON bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the text of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "write the text to this file instead of stdout")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print document details as JSON instead of the text")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	comps, err := setup(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	sess, out, err := extractFile(cmd, comps.Service, args[0])
	if err != nil {
		return err
	}

	if extractJSON {
		data, err := json.MarshalIndent(out.Document, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	text, err := sess.RawText()
	if err != nil {
		return err
	}
	return writeOutput(cmd, extractOut, text)
}
