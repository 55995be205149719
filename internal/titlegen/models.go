package titlegen

// GenerateTitleRequest is the body of POST /api/v1/titles.
type GenerateTitleRequest struct {
	Content   string `json:"content" binding:"required"`
	Backend   string `json:"backend"`
	Model     string `json:"model"`
	MaxLength int    `json:"max_length"`
}

// GenerateTitleResponse carries the generated title back to the client.
type GenerateTitleResponse struct {
	Title   string `json:"title"`
	Backend string `json:"backend"`
	Model   string `json:"model"`
}
