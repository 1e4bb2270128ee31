package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/model"
	"github.com/docsift/docsift/internal/output"
	"github.com/docsift/docsift/internal/pipeline"
)

var (
	analyzeInput  string
	analyzeDocDir string
	analyzeOutput string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis from a JSON request",
	Long: `Reads an analysis request (documents, persona, job to be done) from a
JSON file or stdin, runs the pipeline, and writes the report JSON. A run cut
short by the time budget still exits zero with a partial report; only
invalid input or a fully unreadable collection fails.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "request JSON file (default stdin)")
	analyzeCmd.Flags().StringVarP(&analyzeDocDir, "docs", "d", "", "directory the document filenames resolve against")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "report file (default stdout)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg := config.Load()
	if analyzeDocDir != "" {
		cfg.DocumentDir = analyzeDocDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if analyzeInput != "" {
		f, err := os.Open(analyzeInput)
		if err != nil {
			return fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if analyzeOutput != "" {
		f, err := os.Create(analyzeOutput)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		out = f
	}

	var req model.AnalysisRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		err = fmt.Errorf("parse request: %w", err)
		output.Write(out, output.BuildError(req, err, time.Now()))
		return err
	}
	if err := req.Validate(); err != nil {
		output.Write(out, output.BuildError(req, err, time.Now()))
		return err
	}

	orch := pipeline.NewOrchestrator(cfg, log)
	res, err := orch.Analyze(cmd.Context(), req, nil)
	if err != nil {
		output.Write(out, output.BuildError(req, err, time.Now()))
		return err
	}

	return output.Write(out, output.Build(req, res, time.Now()))
}
