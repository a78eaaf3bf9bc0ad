package export

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lyre-server/internal/app/export"
	"lyre-server/internal/app/repository"
	"lyre-server/internal/app/repository/sqlite"
)

var (
	dbPath         string
	outputFilePath string
	folderID       string
)

func init() {
	Cmd.Flags().StringVar(&dbPath, "db", "data/lyre.db", "path to the sqlite database")
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "destination .xlsx file")
	Cmd.Flags().StringVar(&folderID, "folder", "", "only export recordings in this folder")

	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export recordings and transcripts to Excel",
	Long: `Export recordings and transcripts to an Excel workbook.

Reads straight from the sqlite database, so the server does not need to be
running. Use the /api/recordings/:id/export endpoint for per-recording
exports from a live server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sqlite.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		recordings, err := store.Recordings().List(ctx, repository.RecordingFilter{FolderID: folderID})
		if err != nil {
			return fmt.Errorf("list recordings: %w", err)
		}

		entries := make([]export.Entry, 0, len(recordings))
		for _, r := range recordings {
			entry := export.Entry{Recording: r}
			t, err := store.Transcriptions().FindByRecordingID(ctx, r.ID)
			switch {
			case err == nil:
				entry.Transcription = t
			case errors.Is(err, repository.ErrNotFound):
				// untranscribed recordings still get an overview row
			default:
				return fmt.Errorf("load transcription for %s: %w", r.ID, err)
			}
			entries = append(entries, entry)
		}

		f, err := os.Create(outputFilePath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()

		if err := export.ToExcel(entries, f); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Printf("exported %d recordings to %s\n", len(entries), outputFilePath)
		return nil
	},
}
