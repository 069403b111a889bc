// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/geo-converter/internal/ai"
	"github.com/pdiddy/geo-converter/internal/convert"
	"github.com/pdiddy/geo-converter/pkg/types"
)

// addRunFlags registers the flags shared by every conversion command.
// withText adds --text for modes that accept pasted input.
func addRunFlags(cmd *cobra.Command, withText bool) {
	cmd.Flags().String("out", "", "output directory (default: output.dir from config)")
	cmd.Flags().String("report", "", "write a YAML run report to this path")
	if withText {
		cmd.Flags().String("text", "", "convert this text instead of files; - reads stdin")
	}
}

// newConverter wires the AI collaborators configured in cfg. Without an
// API key the cleanup service is unavailable and PDF extraction needs the
// text backend.
func newConverter(cfg types.Config) *convert.Converter {
	c := &convert.Converter{Log: logger, Concurrency: cfg.Batch.Concurrency}
	if cfg.AI.APIKey != "" {
		claude := ai.NewClaudeBackend(cfg.AI)
		c.Cleaner = claude
		c.PDF = claude
	}
	if cfg.AI.PDFBackend == types.PDFBackendText {
		c.PDF = ai.TextBackend{}
	}
	return c
}

// runSession reads the command's inputs and converts them under session.
func runSession(cmd *cobra.Command, args []string, session convert.Session) error {
	cfg := loadConfig()
	text, _ := cmd.Flags().GetString("text")
	in, err := readInputs(appFs, args, text, cmd.InOrStdin())
	if err != nil {
		return err
	}
	var m convert.Machine
	return execute(cmd, cfg, newConverter(cfg), session, in, &m)
}

// execute runs one conversion attempt through m and writes the artifact
// and, when requested, the report.
func execute(cmd *cobra.Command, cfg types.Config, conv *convert.Converter, session convert.Session, in convert.Inputs, m *convert.Machine) error {
	reportPath, _ := cmd.Flags().GetString("report")

	if err := m.Start(); err != nil {
		return err
	}
	res, err := conv.Run(cmd.Context(), session, in)
	if ferr := m.Finish(err); ferr != nil {
		return ferr
	}
	if err != nil {
		if reportPath != "" {
			if rerr := writeReport(appFs, reportPath, convert.FailureReport(session.Mode(), err)); rerr != nil {
				logger.Warn().Err(rerr).Msg("report not written")
			}
		}
		return err
	}

	art, err := res.Artifact()
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("out")
	if dir == "" {
		dir = cfg.Output.Dir
	}
	path, err := writeArtifact(appFs, dir, art)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res, path)

	if reportPath != "" {
		return writeReport(appFs, reportPath, res.Report(path))
	}
	return nil
}
