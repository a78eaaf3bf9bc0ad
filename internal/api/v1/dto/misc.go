package dto

// FolderRequest creates or renames a folder.
type FolderRequest struct {
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

// TagRequest creates or renames a tag.
type TagRequest struct {
	Name string `json:"name" binding:"required"`
}

// SettingsRequest updates the per-deployment settings row.
type SettingsRequest struct {
	SummaryEnabled bool   `json:"summaryEnabled"`
	LanguageHint   string `json:"languageHint"`
}
