package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brask/logshrink/internal/logshrink"
)

var (
	queryInput      string
	queryTemplateID uint32
	queryHasFilter  bool
	queryFilter     string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Decode and reconstruct log lines from a chunk archive",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryInput, "input", "", "path to a .lshrink chunk archive (required)")
	queryCmd.Flags().Uint32Var(&queryTemplateID, "template-id", 0, "only emit records matching this template id")
	queryCmd.Flags().StringVar(&queryFilter, "filter", "", "case-insensitive substring filter over header fields, body and priority")
	queryCmd.MarkFlagRequired("input")
}

func runQuery(cmd *cobra.Command, args []string) error {
	hasTemplateFilter := cmd.Flags().Changed("template-id")
	hasSubstringFilter := cmd.Flags().Changed("filter")

	chunk, err := logshrink.Decode(queryInput)
	if err != nil {
		return errIOOrFormat("decoding %s: %v", queryInput, err)
	}

	r := logshrink.NewReconstructor(chunk)
	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	for _, rec := range chunk.Records() {
		if hasTemplateFilter && rec.TemplateID != queryTemplateID {
			continue
		}
		if hasSubstringFilter && !strings.Contains(r.Haystack(rec), strings.ToLower(queryFilter)) {
			continue
		}
		if _, err := fmt.Fprintln(out, r.Line(rec)); err != nil {
			if isBrokenPipe(err) {
				return nil
			}
			return errIOOrFormat("writing output: %v", err)
		}
	}
	return nil
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) || strings.Contains(err.Error(), "broken pipe")
}
