package report

import (
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/sitespider/internal/model"
)

// Summary describes one crawl run for human-readable reporting.
type Summary struct {
	// RunID is the coordinator's unique run identifier.
	RunID string

	// Hosts is the allowed host list of the run.
	Hosts []string

	// StartedAt and FinishedAt bound the crawl duration.
	StartedAt  time.Time
	FinishedAt time.Time

	// Interrupted is true when the run was cancelled before the
	// frontier drained.
	Interrupted bool

	// SitemapFiles lists the sitemap paths written for this run.
	SitemapFiles []string

	// Entries is the ordered visit list of the run.
	Entries []model.SitemapEntry
}

// SummaryWriter outputs a crawl run summary in Markdown format.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type SummaryWriter struct {
	output io.Writer
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer) *SummaryWriter {
	return &SummaryWriter{output: output}
}

// Write outputs the full summary in Markdown format.
func (w *SummaryWriter) Write(summary *Summary) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeHostTally(md, summary)
	w.writeSitemaps(md, summary)
	w.writeFooter(md)

	return md.Build()
}

// writeHeader writes the run information table.
func (w *SummaryWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Crawl Summary")
	md.PlainText("")

	status := "completed"
	if summary.Interrupted {
		status = "interrupted"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + summary.RunID + "`"},
			{"Allowed Hosts", strings.Join(summary.Hosts, ", ")},
			{"Started", summary.StartedAt.UTC().Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second).String()},
			{"Pages Crawled", strconv.Itoa(len(summary.Entries))},
			{"Status", status},
		},
	})
	md.PlainText("")

	if summary.Interrupted {
		md.Warning("The crawl was interrupted; the sitemap covers only the pages visited so far.")
		md.PlainText("")
	}
}

// writeHostTally writes the per-host page counts.
func (w *SummaryWriter) writeHostTally(md *markdown.Markdown, summary *Summary) {
	md.H2("Pages per Host")
	md.PlainText("")

	counts := make(map[string]int)
	for _, entry := range summary.Entries {
		if u, err := url.Parse(entry.URL); err == nil {
			counts[u.Host]++
		}
	}
	if len(counts) == 0 {
		md.PlainText("No pages were crawled.")
		md.PlainText("")
		return
	}

	hosts := make([]string, 0, len(counts))
	for host := range counts {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	rows := make([][]string, 0, len(hosts))
	for _, host := range hosts {
		rows = append(rows, []string{host, strconv.Itoa(counts[host])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Host", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSitemaps lists the generated sitemap files.
func (w *SummaryWriter) writeSitemaps(md *markdown.Markdown, summary *Summary) {
	md.H2("Sitemap Files")
	md.PlainText("")

	if len(summary.SitemapFiles) == 0 {
		md.PlainText("No sitemap files were written.")
		md.PlainText("")
		return
	}
	md.BulletList(summary.SitemapFiles...)
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *SummaryWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [sitespider](https://github.com/nao1215/sitespider)*")
}
