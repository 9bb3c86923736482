package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsablic/klio/internal/analysis"
	"github.com/dsablic/klio/internal/model"
	"github.com/dsablic/klio/internal/narrative"
	"github.com/dsablic/klio/internal/output"
	"github.com/dsablic/klio/internal/paginate"
	"github.com/dsablic/klio/internal/ui"
)

func (c *cli) newDirsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirs",
		Short: "List top-level Drive folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := c.app.client.ListDirectories(cmd.Context())
			if err != nil {
				return err
			}
			if f, _ := cmd.Flags().GetString("format"); f == "json" {
				return output.WriteJSON(os.Stdout, dirs)
			}
			return output.WriteDirectories(os.Stdout, dirs)
		},
	}
	cmd.Flags().String("format", "markdown", "Output format: markdown, json")
	return cmd
}

type reportFlags struct {
	format       string
	narrative    bool
	narrativeCLI string
	prompt       string
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: dashboard, markdown, json (default dashboard on a terminal, markdown otherwise)")
	cmd.Flags().BoolVar(&f.narrative, "narrative", false, "Append a prose report written by an installed AI CLI")
	cmd.Flags().StringVar(&f.narrativeCLI, "narrative-cli", "", "AI CLI to use for --narrative (claude, codex, gemini; default: first found)")
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "Additional instructions for --narrative")
}

func (c *cli) newAnalyzeCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "analyze [dir-id]",
		Short: "Run a server-side analysis of a folder and show its dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir, err := c.resolveDirectory(ctx, args)
			if err != nil {
				return err
			}

			title := "Analyzing " + dir.ID
			if dir.Name != "" {
				title = "Analyzing " + dir.Name
			}
			err = ui.Wait(ctx, title, func(ctx context.Context) error {
				_, err := c.app.controller.Analyze(ctx, dir.ID)
				return err
			})
			if err != nil {
				return err
			}
			snap, _ := c.app.controller.Current(dir.ID)
			return c.report(ctx, snap, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) newDashboardCmd() *cobra.Command {
	var flags reportFlags
	cmd := &cobra.Command{
		Use:   "dashboard <dir-id>",
		Short: "Show the last analysis of a folder without re-running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := c.app.controller.Snapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.report(cmd.Context(), snap, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) newFilesCmd() *cobra.Command {
	var (
		page, perPage int
		ageGroup      string
		fileType      string
		category      string
		format        string
	)
	cmd := &cobra.Command{
		Use:   "files <dir-id>",
		Short: "Page through the files of an analyzed folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := fileQuery(page, perPage, ageGroup, fileType, category)
			if err != nil {
				return err
			}
			if q.PerPage <= 0 {
				q.PerPage = c.app.cfg.UI.PageSize
			}

			result, err := c.app.client.ListFiles(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			if format == "json" {
				return output.WriteJSON(os.Stdout, result)
			}
			page := paginate.Page[model.FileRef]{
				Items:      result.Files,
				Number:     q.Page,
				Size:       q.PerPage,
				TotalPages: paginate.TotalPages(result.Total, q.PerPage),
				TotalItems: result.Total,
			}
			return output.WriteFiles(os.Stdout, page, time.Now())
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Files per page (default ui.page_size)")
	cmd.Flags().StringVar(&ageGroup, "age-group", "", "Only files in this age bucket: lessThanOneYear, oneToThreeYears, moreThanThreeYears")
	cmd.Flags().StringVar(&fileType, "file-type", "", "Only files of this type (documents, spreadsheets, presentations, pdfs, images, others)")
	cmd.Flags().StringVar(&category, "category", "", "Only files with findings in this risk category (pii, financial, legal, confidential)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, json")
	return cmd
}

func fileQuery(page, perPage int, ageGroup, fileType, category string) (model.FileQuery, error) {
	q := model.FileQuery{
		Page:     max(page, 1),
		PerPage:  perPage,
		AgeGroup: model.AgeBucket(ageGroup),
		FileType: model.FileTypeCategory(fileType),
		Category: model.RiskCategory(category),
	}
	if q.AgeGroup != "" && !q.AgeGroup.Valid() {
		return q, fmt.Errorf("unknown age group %q", ageGroup)
	}
	if q.Category != "" && !validCategory(q.Category) {
		return q, fmt.Errorf("unknown risk category %q", category)
	}
	return q, nil
}

func validCategory(c model.RiskCategory) bool {
	for _, known := range model.RiskCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c *cli) newSensitiveCmd() *cobra.Command {
	var (
		page, perPage int
		ageGroup      string
		category      string
		format        string
	)
	cmd := &cobra.Command{
		Use:   "sensitive <dir-id>",
		Short: "Review files flagged with sensitive content in the last analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := fileQuery(page, perPage, ageGroup, "", category)
			if err != nil {
				return err
			}
			if q.PerPage <= 0 {
				q.PerPage = c.app.cfg.UI.PageSize
			}

			snap, err := c.app.controller.Snapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var files []model.SensitiveFile
			for _, f := range analysis.SensitiveFiles(snap.Stats) {
				if q.AgeGroup != "" && f.Bucket != q.AgeGroup {
					continue
				}
				if q.Category != "" && f.Category != q.Category {
					continue
				}
				files = append(files, f)
			}

			result := paginate.Paginate(files, q.Page, q.PerPage)
			if format == "json" {
				return output.WriteJSON(os.Stdout, result)
			}
			return output.WriteSensitive(os.Stdout, result)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Files per page (default ui.page_size)")
	cmd.Flags().StringVar(&ageGroup, "age-group", "", "Only files in this age bucket")
	cmd.Flags().StringVar(&category, "category", "", "Only files in this risk category")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, json")
	return cmd
}

// resolveDirectory returns the directory named by args, or asks the user to
// pick one when stderr is a terminal.
func (c *cli) resolveDirectory(ctx context.Context, args []string) (model.Directory, error) {
	if len(args) == 1 {
		return model.Directory{ID: args[0]}, nil
	}
	if !ui.IsTTY() {
		return model.Directory{}, fmt.Errorf("directory id required when not running in a terminal")
	}
	dirs, err := c.app.client.ListDirectories(ctx)
	if err != nil {
		return model.Directory{}, err
	}
	return ui.PickDirectory(dirs)
}

func (c *cli) report(ctx context.Context, snap model.Snapshot, flags reportFlags) error {
	format := flags.format
	if format == "" {
		format = "markdown"
		if ui.IsTTY() {
			format = "dashboard"
		}
	}

	var err error
	switch format {
	case "json":
		err = output.WriteJSON(os.Stdout, snap)
	case "markdown":
		err = output.WriteMarkdown(os.Stdout, snap)
	case "dashboard":
		_, err = fmt.Fprint(os.Stdout, ui.RenderDashboard(snap, 30))
	default:
		return fmt.Errorf("unknown format %q (use dashboard, markdown, json)", format)
	}
	if err != nil || !flags.narrative {
		return err
	}

	w, err := narrative.NewWriter(flags.narrativeCLI, c.app.logger)
	if err != nil {
		return err
	}
	var text string
	err = ui.Wait(ctx, "Writing narrative with "+w.CLI, func(ctx context.Context) error {
		var err error
		text, err = w.Write(ctx, snap, flags.prompt)
		return err
	})
	if err != nil {
		return fmt.Errorf("narrative: %w", err)
	}
	fmt.Fprintln(os.Stdout)
	fmt.Fprint(os.Stdout, text)
	return nil
}
