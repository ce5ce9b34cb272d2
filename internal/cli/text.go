package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// table writes rows under a header, columns aligned with tabwriter.
func table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// or returns *s, or def when s is nil or empty.
func or(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func idString(id int64) string { return fmt.Sprintf("%d", id) }
