package document

type UploadInput struct {
	ApplicationID string
	Type          string
	FileName      string
	Content       []byte
}

type ReviewInput struct {
	DocumentID string
	Status     string
}
