package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"askdb/pkg/models"
	"askdb/pkg/normalize"
)

// renderMessage prints one transcript message. Tabular answers render
// as an aligned table, file answers as the spooled path.
func renderMessage(w io.Writer, m models.ChatMessage) {
	prefix := "bot"
	if m.Sender == models.SenderUser {
		prefix = "you"
	}
	switch m.Type {
	case models.TypeTabular, models.TypeTable:
		fmt.Fprintf(w, "%s> %s\n", prefix, normalize.DisplayText(m.Text))
		renderTable(w, m.RawAnswer)
	case models.TypeAudio, models.TypePDF, models.TypeXLSX, models.TypeDOCX, models.TypeFile:
		fmt.Fprintf(w, "%s> [%s] %s\n", prefix, m.Type, m.Text)
	default:
		fmt.Fprintf(w, "%s> %s\n", prefix, normalize.DisplayText(m.Text))
	}
	if m.Bookmarked {
		fmt.Fprintf(w, "     (bookmarked: %s)\n", m.BookmarkID)
	}
}

// renderTable handles both backend table shapes: a 2D array with a
// header row, and an array of row objects.
func renderTable(w io.Writer, raw any) {
	arr, ok := raw.([]any)
	if !ok || len(arr) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	defer tw.Flush()
	switch arr[0].(type) {
	case []any:
		for _, r := range arr {
			row, ok := r.([]any)
			if !ok {
				continue
			}
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = fmt.Sprintf("%v", normalize.CoerceCell(c))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	case map[string]any:
		first := arr[0].(map[string]any)
		cols := make([]string, 0, len(first))
		for k := range first {
			cols = append(cols, k)
		}
		sort.Strings(cols)
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
		for _, r := range arr {
			obj, ok := r.(map[string]any)
			if !ok {
				continue
			}
			cells := make([]string, len(cols))
			for i, c := range cols {
				cells[i] = fmt.Sprintf("%v", normalize.CoerceCell(obj[c]))
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	}
}
