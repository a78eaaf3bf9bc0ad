package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"lyre-server/cmd/lyre/cmd/export"
	"lyre-server/cmd/lyre/cmd/serve"
	"lyre-server/cmd/lyre/cmd/upload"
	"lyre-server/cmd/lyre/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lyre",
	Short: "Async transcription server for audio recordings",
	Long: `Lyre tracks audio recordings and their transcription jobs.
- serve runs the HTTP API, the job poller and the SSE event stream
- upload pushes local audio files to a running server and transcribes them
- export writes recordings and transcripts to an Excel workbook`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(upload.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
