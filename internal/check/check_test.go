package check

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/doc-web/internal/fetch"
	"github.com/ziadkadry99/doc-web/internal/markdown"
)

type recordingReporter struct {
	total    int
	messages []string
	finished bool
}

func (r *recordingReporter) Start(total int)             { r.total = total }
func (r *recordingReporter) Update(_ int, message string) { r.messages = append(r.messages, message) }
func (r *recordingReporter) Finish()                      { r.finished = true }

func TestRun(t *testing.T) {
	docs := fstest.MapFS{
		"SUMMARY.md":        {Data: []byte("* [Intro](README.md)\n* [Ch1](ch1.md)\n* [Gone](gone.md)\n* [Guide](./guide/intro.md)\n* [Repo](https://github.com/example/book)\n")},
		"README.md":         {Data: []byte("# Welcome\n")},
		"ch1.md":            {Data: []byte("# One\n")},
		"guide/intro.md":    {Data: []byte("# Intro\n")},
		"guide/drafts/x.md": {Data: []byte("# Draft\n")},
		"notes.md":          {Data: []byte("# Notes\n")},
		"image.png":         {Data: []byte{0x89}},
	}
	rep := &recordingReporter{}

	report, err := Run(context.Background(), fetch.NewDirFetcher(docs), markdown.New(), Options{
		SummaryMD: "SUMMARY.md",
		Index:     "README.md",
		Docs:      docs,
		Reporter:  rep,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Pages)
	assert.Equal(t, 1, report.External)
	assert.False(t, report.OK())
	require.Len(t, report.Missing, 1)
	assert.Equal(t, "gone.md", report.Missing[0].Entry.Href)
	assert.True(t, report.Missing[0].IsNotFound())
	assert.Equal(t, []string{"guide/drafts/x.md", "notes.md"}, report.Orphans)

	assert.Equal(t, 4, rep.total)
	assert.Equal(t, []string{"README.md", "ch1.md", "gone.md", "guide/intro.md"}, rep.messages)
	assert.True(t, rep.finished)
}

func TestRunWithoutDocsSkipsOrphans(t *testing.T) {
	docs := fstest.MapFS{
		"SUMMARY.md": {Data: []byte("* [Intro](README.md)\n")},
		"README.md":  {Data: []byte("# Welcome\n")},
		"extra.md":   {Data: []byte("# Extra\n")},
	}

	report, err := Run(context.Background(), fetch.NewDirFetcher(docs), markdown.New(), Options{
		SummaryMD: "SUMMARY.md",
		Index:     "README.md",
	})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Empty(t, report.Orphans)
}

func TestRunMissingSummary(t *testing.T) {
	_, err := Run(context.Background(), fetch.NewDirFetcher(fstest.MapFS{}), markdown.New(), Options{
		SummaryMD: "SUMMARY.md",
		Index:     "README.md",
	})
	assert.ErrorIs(t, err, fetch.ErrNotFound)
}
