package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	apiclient "github.com/donaldgifford/product-search/internal/api/client"
	"github.com/donaldgifford/product-search/internal/session"
	"github.com/donaldgifford/product-search/internal/store"
	domain "github.com/donaldgifford/product-search/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printSession(w io.Writer, s *apiclient.Session) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", s.ID)
	tw.writef("Query:\t%s\n", s.Query)
	state := string(s.State)
	if s.Reason != session.ReasonNone {
		state += " (" + string(s.Reason) + ")"
	}
	tw.writef("State:\t%s\n", state)
	tw.writef("Page:\t%s\n", s.Page)
	tw.writef("Results:\t%d\n", s.Total)
	if s.Restored {
		tw.writef("Restored:\tyes\n")
	}
	if err := tw.finish(); err != nil {
		return err
	}
	if len(s.Results) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return printProductsTable(w, s.Offset, s.Results)
}

func printProductsTable(w io.Writer, offset int, products []domain.Product) error {
	tw := newTabWriter(w)
	tw.writef("#\tID\tPRODUCT\tPRICE\tSALE\n")
	for i := range products {
		p := &products[i]
		sale := "-"
		if p.OnSale() {
			sale = p.PercentOff + " off " + p.OriginalPrice
		}
		tw.writef("%d\t%s\t%s\t%s\t%s\n",
			offset+i+1,
			p.ID,
			truncate(p.DisplayName(), 50),
			p.Price,
			sale,
		)
	}
	return tw.finish()
}

func printNotices(w io.Writer, notices []session.Notice) error {
	tw := newTabWriter(w)
	tw.writef("KIND\tQUERY\tPAGE\tMESSAGE\n")
	for i := range notices {
		tw.writef("%s\t%s\t%s\t%s\n",
			notices[i].Kind,
			notices[i].Query,
			notices[i].Page,
			notices[i].Message,
		)
	}
	return tw.finish()
}

func printSnapshotsTable(w io.Writer, recs []store.SnapshotRecord) error {
	tw := newTabWriter(w)
	tw.writef("ID\tQUERY\tPAGE\tRESULTS\tUPDATED\n")
	for i := range recs {
		r := &recs[i]
		tw.writef("%s\t%s\t%s\t%d\t%s\n",
			r.ID,
			truncate(r.Query, 40),
			r.Page,
			r.ResultCount,
			r.UpdatedAt.Local().Format(timeLayout),
		)
	}
	return tw.finish()
}

func printSnapshotRecord(w io.Writer, r *store.SnapshotRecord) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%s\n", r.ID)
	tw.writef("Query:\t%s\n", r.Query)
	tw.writef("Page:\t%s\n", r.Page)
	tw.writef("Results:\t%d\n", r.ResultCount)
	tw.writef("Updated:\t%s\n", r.UpdatedAt.Local().Format(timeLayout))
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
