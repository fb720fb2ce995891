package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/smartextract/internal/chart"
	"github.com/dgallion1/smartextract/internal/pipeline"
	"github.com/dgallion1/smartextract/internal/qa"
)

var (
	askOrganize bool
	askQuick    string
	askChartOut string
)

var askCmd = &cobra.Command{
	Use:   "ask <file> [question]",
	Short: "Answer a question about a document",
	Long: `Extracts the document and answers the question from its text.
Use --quick for one of the canned questions (` + strings.Join(qa.QuickActions(), ", ") + `).
When the answer includes a chart, --chart-out writes it as an HTML page.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askOrganize, "organize", false, "reorganize the text before asking")
	askCmd.Flags().StringVar(&askQuick, "quick", "", "ask a canned question instead")
	askCmd.Flags().StringVar(&askChartOut, "chart-out", "", "write a chart in the answer to this HTML file")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := ""
	if len(args) == 2 {
		question = args[1]
	}
	if askQuick == "" && strings.TrimSpace(question) == "" {
		return errors.New("please enter a question")
	}

	comps, err := setup(cmd)
	if err != nil {
		return err
	}
	defer comps.Close()
	svc := comps.Service

	sess, _, err := extractFile(cmd, svc, args[0])
	if err != nil {
		return err
	}
	if askOrganize {
		if _, err := svc.Reorganize(cmd.Context(), sess); err != nil {
			return err
		}
	}

	var out *pipeline.AskOutcome
	if askQuick != "" {
		out, err = svc.Quick(cmd.Context(), sess, askQuick)
	} else {
		out, err = svc.Ask(cmd.Context(), sess, question)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out.Record.Answer)
	if out.ChartDropped {
		cmd.PrintErrln("warning: the answer contained chart data that could not be read")
	}
	if out.Record.Chart == nil || askChartOut == "" {
		return nil
	}
	return writeChart(cmd, out.Record.Chart, out.Record.ChartKey)
}

func writeChart(cmd *cobra.Command, spec *chart.Spec, key string) error {
	fig, err := chart.Build(*spec)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if fig == nil {
		cmd.PrintErrln("chart has nothing to draw, skipped")
		return nil
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, fig, key); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if err := os.WriteFile(askChartOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", askChartOut, err)
	}
	cmd.PrintErrf("wrote %s\n", askChartOut)
	return nil
}
