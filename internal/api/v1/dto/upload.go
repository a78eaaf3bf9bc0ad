package dto

import (
	"path/filepath"
	"strings"
)

// PresignUploadRequest asks for a presigned PUT URL for a new recording's
// audio file.
type PresignUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,gt=0"`
	ContentType string `json:"contentType"`
}

// PresignUploadResponse carries everything the client needs to upload and
// then register the recording.
type PresignUploadResponse struct {
	UploadURL   string `json:"uploadUrl"`
	OssKey      string `json:"ossKey"`
	RecordingID string `json:"recordingId"`
}

// audioContentTypes is the accepted upload format whitelist, keyed by file
// extension.
var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
}

// AudioFormat returns the normalized format ("mp3", "m4a", ...) and content
// type for a file name, or ok=false for unsupported extensions.
func AudioFormat(fileName string) (format, contentType string, ok bool) {
	ext := strings.ToLower(filepath.Ext(fileName))
	contentType, ok = audioContentTypes[ext]
	if !ok {
		return "", "", false
	}
	return strings.TrimPrefix(ext, "."), contentType, true
}

// SupportedFormats lists the accepted audio file extensions without the dot.
func SupportedFormats() []string {
	formats := make([]string, 0, len(audioContentTypes))
	for ext := range audioContentTypes {
		formats = append(formats, strings.TrimPrefix(ext, "."))
	}
	return formats
}
