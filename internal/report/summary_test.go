package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitespider/internal/model"
)

// TestSummaryWriter tests Markdown summary generation.
func TestSummaryWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders run information and host tally", func(t *testing.T) {
		t.Parallel()

		started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		summary := &Summary{
			RunID:      "0f8fad5b-d9cb-469f-a165-70867728950e",
			Hosts:      []string{"example.com", "www.example.com"},
			StartedAt:  started,
			FinishedAt: started.Add(90 * time.Second),
			SitemapFiles: []string{
				"output_sitemaps/sitemap.xml",
			},
			Entries: []model.SitemapEntry{
				{URL: "https://example.com/", CrawledAt: "2025-06-01T10:00:00Z"},
				{URL: "https://example.com/jobs", CrawledAt: "2025-06-01T10:00:01Z"},
				{URL: "https://www.example.com/", CrawledAt: "2025-06-01T10:00:02Z"},
			},
		}

		var buf bytes.Buffer
		if err := NewSummaryWriter(&buf).Write(summary); err != nil {
			t.Fatalf("failed to write summary: %v", err)
		}
		got := buf.String()

		for _, want := range []string{
			"# Crawl Summary",
			"0f8fad5b-d9cb-469f-a165-70867728950e",
			"example.com, www.example.com",
			"Pages Crawled",
			"completed",
			"1m30s",
			"## Pages per Host",
			"www.example.com",
			"output_sitemaps/sitemap.xml",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("summary missing %q\n%s", want, got)
			}
		}
	})

	t.Run("marks interrupted runs", func(t *testing.T) {
		t.Parallel()

		summary := &Summary{
			RunID:       "run-1",
			Hosts:       []string{"example.com"},
			StartedAt:   time.Now(),
			FinishedAt:  time.Now(),
			Interrupted: true,
		}

		var buf bytes.Buffer
		if err := NewSummaryWriter(&buf).Write(summary); err != nil {
			t.Fatalf("failed to write summary: %v", err)
		}
		got := buf.String()

		if !strings.Contains(got, "interrupted") {
			t.Errorf("summary missing interrupted status\n%s", got)
		}
		if !strings.Contains(got, "No pages were crawled.") {
			t.Errorf("summary missing empty-run note\n%s", got)
		}
		if !strings.Contains(got, "No sitemap files were written.") {
			t.Errorf("summary missing empty sitemap note\n%s", got)
		}
	})
}
