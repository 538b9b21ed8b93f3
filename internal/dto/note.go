package dto

// SaveNoteRequest is the body of a note upsert. An empty note overwrites the previous text.
type SaveNoteRequest struct {
	Note *string `json:"note" validate:"required"`
}
