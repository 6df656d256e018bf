package model

// State is the single persisted record owned by one user.
type State struct {
	Credits int     `json:"credits"`
	Songs   []Song  `json:"songs"`
	Orders  []Order `json:"orders"`
}

// DefaultState returns an empty record.
func DefaultState() *State {
	return &State{
		Credits: 0,
		Songs:   []Song{},
		Orders:  []Order{},
	}
}

// FindSong returns the index of the song with id, or -1.
func (s *State) FindSong(id string) int {
	for i := range s.Songs {
		if s.Songs[i].ID == id {
			return i
		}
	}
	return -1
}

// Draft bridges the "draft prompt, then finalize" flow.
type Draft struct {
	Form   PromptForm `json:"form"`
	Prompt string     `json:"prompt"`
}
