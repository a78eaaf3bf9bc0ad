package upload

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lyre-server/internal/client"
)

var (
	serverURL string
	token     string
	wait      bool
	noBar     bool
)

func init() {
	Cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "lyre server base URL")
	Cmd.Flags().StringVarP(&token, "token", "t", os.Getenv("LYRE_DEVICE_TOKEN"), "device token (or LYRE_DEVICE_TOKEN)")
	Cmd.Flags().BoolVarP(&wait, "wait", "w", false, "block until transcription finishes")
	Cmd.Flags().BoolVar(&noBar, "no-progress", false, "disable the progress bar")
}

// Cmd represents the upload command
var Cmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload local audio files and transcribe them",
	Long: `Upload one or more local audio files to a running lyre server.

Each file goes through the same flow the desktop app uses: presign, PUT to
object storage, register the recording, submit the transcription job. With
--wait the command polls each job until it succeeds or fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(serverURL, token)
		progress := client.NewUploadProgress(!noBar && client.IsTTY(os.Stderr), os.Stderr)
		defer progress.Wait()

		var failed int
		for _, path := range args {
			recording, job, err := c.UploadAndTranscribe(cmd.Context(), path, progress.Reader)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Printf("%s: recording %s, job %s\n", path, recording.ID, job.ID)

			if !wait {
				continue
			}
			done, err := c.WaitForJob(cmd.Context(), job.ID, 3*time.Second)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: waiting for job: %v\n", path, err)
				failed++
				continue
			}
			fmt.Printf("%s: %s", path, done.Status)
			if done.ErrorMessage != "" {
				fmt.Printf(" (%s)", done.ErrorMessage)
				failed++
			}
			fmt.Println()
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", failed, len(args))
		}
		return nil
	},
}
