package drive

// FileInfo is the metadata this server needs about a Drive file or folder.
// Values are produced transiently from API responses and never mutated.
type FileInfo struct {
	// ID is the unique identifier for the file
	ID string `json:"id"`

	// Name is the display name of the file
	Name string `json:"name"`

	// MimeType is the MIME type of the file
	MimeType string `json:"mimeType"`
}

// Type classifies the entry as "Folder" or "File". Classification is purely
// by MIME type equality to the Drive folder MIME type.
func (f *FileInfo) Type() string {
	if f.MimeType == FolderMimeType {
		return "Folder"
	}
	return "File"
}
