package main

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/bulkcsv"
)

const templateSheet = "Movements"

func newHeadersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "headers",
		Short: "List the template columns in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for i, h := range bulkcsv.Headers() {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, h)
			}
			return nil
		},
	}
}

func newTemplateCmd() *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty upload template",
		Long:  "Writes the CSV header row to stdout, or an Excel workbook with --xlsx.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if xlsxPath != "" {
				return writeWorkbook(xlsxPath)
			}
			w := csv.NewWriter(cmd.OutOrStdout())
			if err := w.Write(bulkcsv.Headers()); err != nil {
				return err
			}
			w.Flush()
			return w.Error()
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write an .xlsx template to this path")
	return cmd
}

func writeWorkbook(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return err
	}
	headers := bulkcsv.Headers()
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(templateSheet, "A1", &row); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(templateSheet, "A1", last, style); err != nil {
		return err
	}
	lastCol := strings.TrimSuffix(last, "1")
	if err := f.SetColWidth(templateSheet, "A", lastCol, 28); err != nil {
		return err
	}
	if err := f.SetPanes(templateSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
