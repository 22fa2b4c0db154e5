package model

// ContentType discriminates which catalog table a content reference points at.
// Every cross-content record (activities, versions, engagement) carries one of
// these tags next to the content id.
type ContentType string

const (
	ContentTypeCourse   ContentType = "course"
	ContentTypeOER      ContentType = "oer_resource"
	ContentTypeUploaded ContentType = "uploaded_content"
)

// Valid reports whether the tag names a known catalog.
func (t ContentType) Valid() bool {
	return t == ContentTypeCourse || t == ContentTypeOER || t == ContentTypeUploaded
}
