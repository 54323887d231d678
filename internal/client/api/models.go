package api

import "io"

// Book is the metadata record of a stored book.
type Book struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Size     int64             `json:"size"`
	Metadata map[string]string `json:"metadata"`
}

// Suggestion is one autocomplete entry for a search query.
type Suggestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// UploadForm is the payload of UploadBook. Content is read once, in full,
// before the first request.
type UploadForm struct {
	Title    string
	Filename string
	Content  io.Reader
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Status   int     `json:"status"`
	Response string  `json:"response"`
	Token    *string `json:"token"`
}

type createAccountResponse struct {
	Username string `json:"username"`
}

type searchResponse struct {
	Results []Book `json:"results"`
}

type searchCountResponse struct {
	Count float64 `json:"count"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

type updateMetadataRequest struct {
	Title    string            `json:"title"`
	Metadata map[string]string `json:"metadata"`
}

type unauthorizedResponse struct {
	Reason string `json:"reason"`
}
