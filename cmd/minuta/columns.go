package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newColumnsCmd(root *rootOptions) *cobra.Command {
	var sheetPath string

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List the resolved column names of a spreadsheet",
		Long:  "Prints one resolved column name per line. These are the {{KEY}}\nplaceholders available to a template.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := root.service(cmd)
			if err != nil {
				return report(cmd, err)
			}
			data, err := os.ReadFile(sheetPath)
			if err != nil {
				return report(cmd, err)
			}
			set, err := svc.Columns(cmd.Context(), filepath.Base(sheetPath), data)
			if err != nil {
				return report(cmd, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), set.Listing())
			return nil
		},
	}
	cmd.Flags().StringVar(&sheetPath, "sheet", "", "spreadsheet (.xlsx, .xlsm or .csv)")
	cmd.MarkFlagRequired("sheet")
	return cmd
}
