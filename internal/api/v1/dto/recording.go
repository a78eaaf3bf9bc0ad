package dto

// CreateRecordingRequest registers a recording whose audio was already
// uploaded through the presign flow. Field names match the desktop client.
type CreateRecordingRequest struct {
	ID         string   `json:"id"`
	Title      string   `json:"title" binding:"required"`
	FileName   string   `json:"fileName" binding:"required"`
	OssKey     string   `json:"ossKey" binding:"required"`
	FileSize   int64    `json:"fileSize"`
	Duration   float64  `json:"duration"`
	Format     string   `json:"format"`
	SampleRate int      `json:"sampleRate"`
	FolderID   string   `json:"folderId"`
	TagIDs     []string `json:"tagIds"`
}

// UpdateRecordingRequest carries the user-editable fields; nil means leave
// unchanged.
type UpdateRecordingRequest struct {
	Title    *string   `json:"title"`
	FolderID *string   `json:"folderId"`
	TagIDs   *[]string `json:"tagIds"`
}

// ListResponse wraps collection payloads the way the desktop client expects.
type ListResponse struct {
	Items any `json:"items"`
}
