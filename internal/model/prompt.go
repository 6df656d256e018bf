package model

// PromptForm is the song-order description used to draft a prompt.
type PromptForm struct {
	RecipientName   string `json:"recipientName" validate:"required,max=100"`
	Relationship    string `json:"relationship" validate:"omitempty,max=100"`
	Who             string `json:"who" validate:"omitempty,max=300"`
	Feelings        string `json:"feelings" validate:"omitempty,max=300"`
	Vibe            string `json:"vibe" validate:"omitempty,max=100"`
	Style           string `json:"style" validate:"omitempty,max=100"`
	Story           string `json:"story" validate:"omitempty,max=2000"`
	Keywords        string `json:"keywords" validate:"omitempty,max=300"`
	Personalisation string `json:"personalisation" validate:"omitempty,max=100"`
	IncludeName     bool   `json:"includeName"`
}

// PromptResponse is returned by POST /api/create-prompt
type PromptResponse struct {
	Success bool   `json:"success"`
	Prompt  string `json:"prompt"`
}

// FinalizeRequest represents the optional body of POST /api/songs/finalize.
// Empty fields fall back to the stored draft.
type FinalizeRequest struct {
	Prompt     string `json:"prompt" validate:"omitempty,max=300"`
	MusicStyle string `json:"musicStyle" validate:"omitempty,max=100"`
}

// FinalizeResponse is returned once a song has been submitted
type FinalizeResponse struct {
	Success bool   `json:"success"`
	Song    Song   `json:"song"`
	ETA     int    `json:"eta"`
	Message string `json:"message"`
}
