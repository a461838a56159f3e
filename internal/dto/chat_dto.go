package dto

type ChatRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
