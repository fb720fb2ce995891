package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/smartextract/internal/pipeline"
)

var (
	reorganizeOut  string
	reorganizeSave bool
)

var reorganizeCmd = &cobra.Command{
	Use:   "reorganize <file>",
	Short: "Extract a document and reorganize it as markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runReorganize,
}

func init() {
	reorganizeCmd.Flags().StringVarP(&reorganizeOut, "out", "o", "", "write the organized text to this file")
	reorganizeCmd.Flags().BoolVar(&reorganizeSave, "save", false, "write to organized_content_<timestamp>.txt")
	rootCmd.AddCommand(reorganizeCmd)
}

func runReorganize(cmd *cobra.Command, args []string) error {
	comps, err := setup(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()

	sess, _, err := extractFile(cmd, comps.Service, args[0])
	if err != nil {
		return err
	}
	organized, err := comps.Service.Reorganize(cmd.Context(), sess)
	if err != nil {
		return err
	}

	out := reorganizeOut
	if out == "" && reorganizeSave {
		out = pipeline.ArtifactName(time.Now())
	}
	return writeOutput(cmd, out, organized)
}
