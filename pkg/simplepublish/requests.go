package simplepublish

// CreatePostRequest contains parameters for publishing a new post. Title and
// Summary are required; Slug is an optional override for the value otherwise
// derived from the title. PDF is required, Cover is optional.
type CreatePostRequest struct {
	Title   string
	Summary string
	Slug    string
	PDF     *FileUpload
	Cover   *FileUpload
}

// UpdatePostRequest contains parameters for editing an existing post. Every
// field is a pointer: nil means "leave the current value alone", non-nil means
// "replace with this". The service resolves the patch against the fetched row,
// never against sentinel defaults.
type UpdatePostRequest struct {
	Title   *string
	Summary *string
	Slug    *string
	PDF     *FileUpload
	Cover   *FileUpload
}
