package model

// DashboardView is the UI state derived from a State. It is always derived
// in full, never patched.
type DashboardView struct {
	Credits    int        `json:"credits"`
	SongsCount int        `json:"songsCount"`
	CanCreate  bool       `json:"canCreate"`
	Songs      []SongCard `json:"songs"`
	Orders     []Order    `json:"orders"`
}

// SongCard is one rendered entry of the songs list.
type SongCard struct {
	Song
	Playable bool   `json:"playable"`
	Caption  string `json:"caption"`
}

// View derives the dashboard from s.
func (s *State) View() DashboardView {
	view := DashboardView{
		Credits:    s.Credits,
		SongsCount: len(s.Songs),
		CanCreate:  s.Credits > 0,
		Songs:      make([]SongCard, 0, len(s.Songs)),
		Orders:     make([]Order, len(s.Orders)),
	}
	copy(view.Orders, s.Orders)

	for _, song := range s.Songs {
		card := SongCard{Song: song}
		switch {
		case song.Status == SongStatusProcessing:
			card.Caption = "Generating..."
		case song.Status == SongStatusReady:
			card.Playable = song.AudioURL != ""
			card.Caption = song.Vibe + " • " + song.Date
		default:
			card.Caption = "Generation Failed"
		}
		view.Songs = append(view.Songs, card)
	}
	return view
}
