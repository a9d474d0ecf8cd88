// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/oneconcern/datasets/pkg/core"
	"github.com/oneconcern/datasets/pkg/metrics"
)

const maxColWidth = 80

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	koText   = color.New(color.FgRed).SprintFunc()
	skipText = color.New(color.FgYellow).SprintFunc()
)

func newTable(headers ...interface{}) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow(headers...)
	return table
}

func printPublishReport(w io.Writer, report *core.PublishReport) {
	table := newTable("DATASET", "FILES", "STATUS")
	for _, ds := range report.Datasets {
		switch {
		case ds.Skipped != "":
			table.AddRow(ds.Dataset, "-", skipText("skipped: "+ds.Skipped))
		case len(ds.Files) > 0:
			table.AddRow(ds.Dataset, len(ds.Files), okText("published"))
		default:
			table.AddRow(ds.Dataset, "-", koText("not published"))
		}
	}
	_, _ = fmt.Fprintln(w, table)
	_, _ = fmt.Fprintf(w, "published %d files from repository %s\n", report.Files(), report.Root)
}

func printRetrieveReport(w io.Writer, report *core.RetrieveReport) {
	table := newTable("STATUS", "FILE", "SIZE", "ATTEMPTS")
	for _, f := range report.Files {
		if f.OK() {
			table.AddRow(okText("ok"), f.Path, metrics.HumanSize(f.Bytes), f.Attempts)
			continue
		}
		table.AddRow(koText("failed"), f.Path, "-", f.Attempts)
	}
	_, _ = fmt.Fprintln(w, table)
	_, _ = fmt.Fprintf(w, "retrieved %d/%d files (%s) of dataset %s with %s\n",
		report.Retrieved(), len(report.Files), metrics.HumanSize(report.Bytes()), report.Dataset, report.Transport)
}

func printDatasets(w io.Writer, summaries []core.DatasetSummary) {
	table := newTable("DATASET", "DATA FILES", "PUBLISHED FILES")
	count := func(n int) string {
		if n < 0 {
			return "-"
		}
		return strconv.Itoa(n)
	}
	for _, s := range summaries {
		published := count(s.Published)
		if s.Err != nil {
			published = koText(s.Err.Error())
		}
		table.AddRow(s.Name, count(s.DataFiles), published)
	}
	_, _ = fmt.Fprintln(w, table)
}
