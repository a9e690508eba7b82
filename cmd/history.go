package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"photosync/db"
	"photosync/repository"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := repository.NewRunRepository(db.DB)

		runs, err := repo.GetRecent(historyN)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("no runs yet")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"When", "Source", "Scanned", "Copied", "Bytes", "Dups", "Failed", "Took"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetHeaderLine(false)
		table.SetTablePadding("\t")
		table.SetNoWhiteSpace(true)

		for _, run := range runs {
			table.Append([]string{
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Source,
				strconv.Itoa(run.Scanned),
				strconv.Itoa(run.Copied),
				humanize.Bytes(uint64(run.BytesCopied)),
				strconv.Itoa(run.Duplicates),
				strconv.Itoa(run.Failures),
				fmt.Sprintf("%dms", run.DurationMS),
			})
		}

		table.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
