package models

// ============================================================
// File Model
// ============================================================

// File is the metadata row of one uploaded asset. Filename is the name on
// disk, OriginalName the name the client sent.
type File struct {
	ID           string
	Filename     string
	OriginalName string
	Size         int64
	Mimetype     string
	UploadedAt   string
}
