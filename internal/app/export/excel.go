// Package export renders transcripts into spreadsheet files for offline use.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"github.com/tealeg/xlsx"

	"lyre-server/internal/app/model"
)

// Entry pairs a recording with its transcription for export.
type Entry struct {
	Recording     model.Recording
	Transcription *model.Transcription
}

// ToExcel writes one workbook with an overview sheet (one row per recording)
// and a sentences sheet (one row per time-aligned segment).
func ToExcel(entries []Entry, w io.Writer) error {
	file := xlsx.NewFile()

	overview, err := file.AddSheet("Recordings")
	if err != nil {
		return fmt.Errorf("add overview sheet: %w", err)
	}

	header := overview.AddRow()
	for _, title := range []string{
		"ID", "Title", "File Name", "Status", "Duration (s)", "Created At", "Language", "Transcript", "AI Summary",
	} {
		header.AddCell().Value = title
	}

	for _, e := range entries {
		row := overview.AddRow()
		row.AddCell().Value = e.Recording.ID
		row.AddCell().Value = e.Recording.Title
		row.AddCell().Value = e.Recording.FileName
		row.AddCell().Value = string(e.Recording.Status)
		row.AddCell().Value = fmt.Sprintf("%.2f", e.Recording.Duration)
		row.AddCell().Value = e.Recording.CreatedAt.Format(time.RFC3339)
		if e.Transcription != nil {
			row.AddCell().Value = e.Transcription.Language
			row.AddCell().Value = e.Transcription.FullText
		} else {
			row.AddCell().Value = ""
			row.AddCell().Value = ""
		}
		row.AddCell().Value = e.Recording.AISummary
	}

	withSentences := lo.Filter(entries, func(e Entry, _ int) bool {
		return e.Transcription != nil && len(e.Transcription.Sentences) > 0
	})
	if len(withSentences) > 0 {
		sentences, err := file.AddSheet("Sentences")
		if err != nil {
			return fmt.Errorf("add sentences sheet: %w", err)
		}

		header := sentences.AddRow()
		for _, title := range []string{"Recording ID", "Title", "#", "Begin", "End", "Text"} {
			header.AddCell().Value = title
		}

		for _, e := range withSentences {
			for _, s := range e.Transcription.Sentences {
				row := sentences.AddRow()
				row.AddCell().Value = e.Recording.ID
				row.AddCell().Value = e.Recording.Title
				row.AddCell().Value = fmt.Sprint(s.ID)
				row.AddCell().Value = formatTimestamp(s.BeginTimeMs)
				row.AddCell().Value = formatTimestamp(s.EndTimeMs)
				row.AddCell().Value = s.Text
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// formatTimestamp renders milliseconds as h:mm:ss.mmm.
func formatTimestamp(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms%1000)
}
