package dto

type MediaUploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
	Inline   bool   `json:"inline,omitempty"` // true when a data-URL fallback was used
}
