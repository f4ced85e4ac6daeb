package excel

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/municrud/municrud/cli/api"
	"github.com/municrud/municrud/cli/cmd"
	"github.com/municrud/municrud/cli/helpers"
	"github.com/municrud/municrud/cli/tui/models"
	"github.com/municrud/municrud/cli/tui/styles"
	"github.com/municrud/municrud/engine/spreadsheet"
	"github.com/municrud/municrud/pkg/logger"
	"github.com/spf13/cobra"
)

// Cmd returns the spreadsheet command group
func Cmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "excel",
		Aliases: []string{"xlsx"},
		Short:   "Bulk import and export staff spreadsheets",
	}
	c.AddCommand(importCmd(), exportCmd(), templateCmd())
	return c
}

func run(requireAuth func(*cobra.Command) bool, handler cmd.HandlerFunc) func(*cobra.Command, []string) error {
	return func(cobraCmd *cobra.Command, args []string) error {
		return cmd.ExecuteCommand(cobraCmd, cmd.ExecutorOptions{RequireAuth: requireAuth(cobraCmd)}, cmd.ModeHandlers{
			JSON: handler,
			TUI:  handler,
		}, args)
	}
}

func always(*cobra.Command) bool { return true }

func importCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Validate a spreadsheet and upload its rows",
		Long: `The file is checked locally before anything is sent: it must be an xlsx
workbook whose header matches the template, and every row must pass the
same rules as the create form.`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(c *cobra.Command) bool {
			return !helpers.GetFlagBoolWithDefault(c, "dry-run", false)
		}, importHandler),
	}
	c.Flags().Bool("dry-run", false, "Only validate the file")
	return c
}

func exportCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "export",
		Short: "Download staff records as a spreadsheet",
		RunE:  run(always, exportHandler),
	}
	c.Flags().String("quantity", "all", "Rows to export: one of the page sizes or all")
	c.Flags().Int("page", 1, "Page to start from")
	c.Flags().StringP("output", "o", api.ExportFileName, "File name inside the download directory")
	return c
}

func templateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "template",
		Short: "Download the empty import template",
		RunE: run(func(c *cobra.Command) bool {
			return !helpers.GetFlagBoolWithDefault(c, "offline", false)
		}, templateHandler),
	}
	c.Flags().Bool("offline", false, "Build the template locally instead of downloading it")
	c.Flags().StringP("output", "o", api.TemplateFileName, "File name inside the download directory")
	return c
}

type importResult struct {
	File     string   `json:"file"`
	Sheet    string   `json:"sheet"`
	Rows     int      `json:"rows"`
	Problems []string `json:"problems,omitempty"`
	Uploaded bool     `json:"uploaded"`
	Message  string   `json:"message,omitempty"`
}

func importHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	log := logger.FromContext(ctx)
	path := args[0]
	name := filepath.Base(path)
	data, err := spreadsheet.NewOSStore(".").Read(path)
	if err != nil {
		return err
	}
	report, err := spreadsheet.Inspect(data)
	if err != nil {
		return helpers.NewCliError(helpers.CodeValidation, "file rejected", err.Error()).WithCause(err)
	}
	res := importResult{File: path, Sheet: report.Sheet, Rows: report.Rows}
	for _, p := range report.Problems {
		res.Problems = append(res.Problems, p.String())
	}
	if !report.Valid() {
		log.Debug("spreadsheet has problems", "count", len(report.Problems))
		printImport(cobraCmd, executor.GetMode(), res)
		return helpers.NewCliError(helpers.CodeValidation,
			fmt.Sprintf("%d %s found, nothing was uploaded", len(res.Problems),
				helpers.Pluralize(len(res.Problems), "problem", "problems")))
	}
	if helpers.GetFlagBoolWithDefault(cobraCmd, "dry-run", false) {
		res.Message = "file is valid"
		printImport(cobraCmd, executor.GetMode(), res)
		return nil
	}
	msg, err := executor.Client().ImportBulk(ctx, name, bytes.NewReader(data))
	if err != nil {
		return err
	}
	res.Uploaded = true
	res.Message = msg
	printImport(cobraCmd, executor.GetMode(), res)
	return nil
}

func printImport(cobraCmd *cobra.Command, mode models.Mode, res importResult) {
	out := cobraCmd.OutOrStdout()
	if mode == models.ModeJSON {
		_ = helpers.WriteJSON(out, res, helpers.ShouldUseColor(cobraCmd)) //nolint:errcheck // best effort
		return
	}
	fmt.Fprintf(out, "%s: %d %s in sheet %q\n", res.File, res.Rows, helpers.Pluralize(res.Rows, "row", "rows"), res.Sheet)
	for _, p := range res.Problems {
		fmt.Fprintln(out, styles.ErrorStyle.Render("  ✗ "+p))
	}
	if res.Message != "" {
		fmt.Fprintln(out, styles.SuccessStyle.Render("✓ "+res.Message))
	}
}

type savedFile struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

func save(cobraCmd *cobra.Command, executor *cmd.CommandExecutor, name string, data []byte) error {
	path, err := executor.DownloadStore().Save(name, data)
	if err != nil {
		return err
	}
	if executor.GetMode() == models.ModeJSON {
		return helpers.WriteJSON(cobraCmd.OutOrStdout(), savedFile{Path: path, Bytes: len(data)}, helpers.ShouldUseColor(cobraCmd))
	}
	fmt.Fprintln(cobraCmd.OutOrStdout(), styles.SuccessStyle.Render("✓ saved "+path))
	return nil
}

func exportHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	quantity, err := api.ParseExportQuantity(helpers.GetFlagStringWithDefault(cobraCmd, "quantity", "all"))
	if err != nil {
		return helpers.NewCliError(helpers.CodeValidation, err.Error())
	}
	page := helpers.GetFlagIntWithDefault(cobraCmd, "page", 1)
	if page < 1 {
		return helpers.NewCliError(helpers.CodeValidation, "page must be at least 1")
	}
	data, err := executor.Client().ExportBulk(ctx, quantity, page)
	if err != nil {
		return err
	}
	return save(cobraCmd, executor, helpers.GetFlagStringWithDefault(cobraCmd, "output", api.ExportFileName), data)
}

func templateHandler(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	var data []byte
	var err error
	if helpers.GetFlagBoolWithDefault(cobraCmd, "offline", false) {
		data, err = spreadsheet.Template()
	} else {
		data, err = executor.Client().DownloadTemplate(ctx)
	}
	if err != nil {
		return err
	}
	return save(cobraCmd, executor, helpers.GetFlagStringWithDefault(cobraCmd, "output", api.TemplateFileName), data)
}
