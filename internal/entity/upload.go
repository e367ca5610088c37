package entity

// Upload describes a stored PDF blob.
type Upload struct {
	FileID      string `json:"fileId"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Length      int64  `json:"length"`
	ChunkSize   int    `json:"chunkSize"`
	UploadedAt  string `json:"uploadedAt"`
}
