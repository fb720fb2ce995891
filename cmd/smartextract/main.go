// Command smartextract runs extraction, reorganization and question
// answering against a local file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/smartextract/internal/config"
	"github.com/dgallion1/smartextract/internal/pipeline"
	"github.com/dgallion1/smartextract/internal/session"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "smartextract",
	Short: "Extract, organize and question document content",
	Long: `smartextract pulls text out of a document, falling back to a hosted
parsing service when local parsing yields nothing, and can reorganize the
text or answer questions about it with a language model.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// setup loads configuration and wires the pipeline for one command run.
func setup(cmd *cobra.Command) (*pipeline.Components, error) {
	log := newLogger(cmd)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, key := range cfg.MissingCredentials() {
		log.Warn("credential not set, calls to this service will fail", "env", key)
	}
	return pipeline.Build(cmd.Context(), cfg, log)
}

// extractFile runs extraction on path in a fresh session.
func extractFile(cmd *cobra.Command, svc *pipeline.Service, path string) (*session.Session, *pipeline.ExtractOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sess := session.New("cli")
	out, err := svc.Extract(cmd.Context(), sess, filepath.Base(path), f)
	if err != nil {
		return nil, nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return sess, out, nil
}

func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	cmd.PrintErrf("wrote %s\n", path)
	return nil
}
