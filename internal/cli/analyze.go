package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/commhealth/internal/config"
	"github.com/godilite/commhealth/internal/engine"
	"github.com/godilite/commhealth/internal/survey"
)

const dateLayout = "2006-01-02"

type analyzeOptions struct {
	surveyPath    string
	responsesPath string
	summary       bool
	company       string
	department    string
	from          string
	to            string
}

// NewAnalyzeCmd computes analytics over an exported JSON array of responses.
func NewAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute analytics from a survey definition and exported responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.surveyPath, "survey", "", "path to the survey definition YAML")
	cmd.Flags().StringVar(&opts.responsesPath, "responses", "", "path to a JSON array of responses")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print the plain-text report instead of JSON")
	cmd.Flags().StringVar(&opts.company, "company", "", "only include this company")
	cmd.Flags().StringVar(&opts.department, "department", "", "only include this department")
	cmd.Flags().StringVar(&opts.from, "from", "", "first completion day, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.to, "to", "", "last completion day, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("survey")
	_ = cmd.MarkFlagRequired("responses")
	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, opts analyzeOptions) error {
	filters, err := opts.filters()
	if err != nil {
		return err
	}

	var (
		def     *survey.Definition
		records []engine.Record
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		def, err = survey.Load(opts.surveyPath)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = loadRecords(opts.responsesPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	snap := engine.ComputeAnalytics(records, def.SectionKeys(), filters, config.LoadFromEnv().Thresholds)

	if opts.summary {
		_, err := io.WriteString(out, engine.FormatSummary(snap, def.Sections))
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func (o analyzeOptions) filters() (engine.Filters, error) {
	f := engine.Filters{Company: o.company, Department: o.department}
	if o.from != "" {
		from, err := time.Parse(dateLayout, o.from)
		if err != nil {
			return f, fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
		}
		f.From = from
	}
	if o.to != "" {
		to, err := time.Parse(dateLayout, o.to)
		if err != nil {
			return f, fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
		}
		f.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("--to is before --from")
	}
	return f, nil
}

func loadRecords(path string) ([]engine.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	var records []engine.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse responses %s: %w", path, err)
	}
	return records, nil
}
