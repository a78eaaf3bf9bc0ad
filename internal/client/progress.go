package client

import (
	"io"
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// UploadProgress renders a byte-level progress bar for one upload.
type UploadProgress struct {
	container *mpb.Progress
	enabled   bool
}

// NewUploadProgress creates a progress renderer. When enabled is false every
// method is a no-op, so non-TTY runs stay quiet.
func NewUploadProgress(enabled bool, writer io.Writer) *UploadProgress {
	if !enabled {
		return &UploadProgress{}
	}
	if writer == nil {
		writer = os.Stderr
	}
	return &UploadProgress{
		container: mpb.New(mpb.WithOutput(writer)),
		enabled:   true,
	}
}

// Reader wraps r so reads advance a bar sized to total. Matches the
// signature Client.Upload expects for its progress hook.
func (p *UploadProgress) Reader(r io.Reader, total int64) io.Reader {
	if !p.enabled {
		return r
	}

	bar := p.container.AddBar(total,
		mpb.PrependDecorators(
			decor.Name("uploading ", decor.WC{C: decor.DindentRight}),
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%d", decor.WCSyncSpace),
			decor.OnComplete(decor.AverageSpeed(decor.SizeB1024(0), "% .1f", decor.WCSyncSpace), "done"),
		),
	)
	return bar.ProxyReader(r)
}

// Wait blocks until all bars have rendered their final state.
func (p *UploadProgress) Wait() {
	if p.enabled {
		p.container.Wait()
	}
}

// IsTTY reports whether the writer is an interactive terminal.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
