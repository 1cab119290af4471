package main

import (
	"fmt"
	"io"
	"os"

	"bulkdelete/internal/bulkdelete/input"
	"bulkdelete/internal/bulkdelete/model"

	"github.com/spf13/cobra"
)

func newExtractCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var (
		inputPath string
		header    bool
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Turn a JSON search result (results[].id) into CSV identifiers",
		Long: `extract reads a JSON document of the form {"results":[{"id":"..."}]}
and writes one CSV record per id after an "id" header row, ready to be piped
into "bulkdelete run --skip-header". A document without "results" produces no output.`,
		Example: `  curl -s "$SEARCH_URL" | bulkdelete extract | bulkdelete run --skip-header`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := stdin
			if inputPath != "" && inputPath != "-" {
				file, err := os.Open(inputPath)
				if err != nil {
					return fmt.Errorf("%w: %w", model.ErrInputParse, err)
				}
				defer file.Close()
				in = file
			}
			_, err := input.Extract(stdout, input.NewJSONSource(in), header)
			return err
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "input file, - for stdin")
	cmd.Flags().BoolVar(&header, "header", true, `write an "id" header row first when the document has results`)
	return cmd
}
