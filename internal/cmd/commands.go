package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/asaidimu/go-adhquery/core/catalog"
	"github.com/asaidimu/go-adhquery/core/query"
	"github.com/asaidimu/go-adhquery/sqlite"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ErrInvalidInput is returned by build when the sheet's input has errors.
var ErrInvalidInput = errors.New("input has errors")

func newReportsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the supported reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REPORT\tKIND\tTEMPLATE")
			for _, r := range a.service.Reports() {
				template := "yes"
				if !r.HasTemplate {
					template = "missing"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Kind, template)
			}
			return w.Flush()
		},
	}
}

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the registered query templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, kind := range a.templates.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var report, file string
	cmd := &cobra.Command{
		Use:   "import <sheet>",
		Short: "Store an input file as a sheet",
		Long: "Store the report parameters, groupings, optional filters and grouping set name " +
			"from a YAML input file as a sheet, replacing any tables it already has.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet := args[0]
			if !hasReport(a, report) {
				return fmt.Errorf("unsupported report type: %s", report)
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			var input query.TableInput
			if err := yaml.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("failed to parse input file: %w", err)
			}

			ctx := cmd.Context()
			reportType := sqlite.Metadatum{Key: catalog.ReportTypeKey, Value: report}
			if err := a.store.SaveInput(ctx, sheet, &input, reportType); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported sheet %s for %s\n", sheet, report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&report, "report", "r", "", "report the sheet is built for")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML input file")
	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func hasReport(a *app, name string) bool {
	for _, r := range a.service.Reports() {
		if r.Name == name {
			return true
		}
	}
	return false
}

func newBuildCmd(a *app) *cobra.Command {
	var report string
	var printJob bool
	cmd := &cobra.Command{
		Use:   "build <sheet>",
		Short: "Build the query for a stored sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sheet := args[0]

			input, err := a.store.LoadInput(ctx, sheet)
			if err != nil {
				return err
			}
			if report == "" {
				stored, ok, err := a.store.ReportType(ctx, sheet)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("sheet %s has no report type; pass --report", sheet)
				}
				report = stored
			}

			result, err := a.service.Generate(ctx, report, input)
			if err != nil {
				return err
			}
			if !result.Valid {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Errors)
				return ErrInvalidInput
			}

			if printJob {
				out, err := yaml.Marshal(result.Job)
				if err != nil {
					return fmt.Errorf("failed to encode job: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.SQL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&report, "report", "r", "", "override the report stored with the sheet")
	cmd.Flags().BoolVar(&printJob, "job", false, "print the query job definition as YAML instead of the SQL")
	return cmd
}

func newSheetsCmd(a *app) *cobra.Command {
	var remove string
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "List stored sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if remove != "" {
				if err := a.store.DeleteSheet(ctx, remove); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted sheet %s\n", remove)
				return nil
			}

			sheets, err := a.store.Sheets(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SHEET\tREPORT")
			for _, sheet := range sheets {
				report, _, err := a.store.ReportType(ctx, sheet)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", sheet, report)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&remove, "delete", "", "delete the named sheet instead of listing")
	return cmd
}
