package model

import "time"

// SongStatus is the lifecycle state of a generation job.
type SongStatus string

const (
	SongStatusProcessing    SongStatus = "Processing"
	SongStatusReady         SongStatus = "Ready"
	SongStatusFailed        SongStatus = "Failed"
	SongStatusFailedTimeout SongStatus = "Failed (Timeout)"
	SongStatusFailedNoAudio SongStatus = "Failed (No Audio)"
)

// IsTerminal reports whether no further transition may leave s.
func (s SongStatus) IsTerminal() bool {
	switch s {
	case SongStatusReady, SongStatusFailed, SongStatusFailedTimeout, SongStatusFailedNoAudio:
		return true
	}
	return false
}

// IsFailure reports whether s is one of the failed terminal states.
func (s SongStatus) IsFailure() bool {
	return s.IsTerminal() && s != SongStatusReady
}

// Song is a single generation job and its lifecycle record.
type Song struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Recipient     string     `json:"recipient"`
	Vibe          string     `json:"vibe"`
	Date          string     `json:"date"`
	Status        SongStatus `json:"status"`
	CoverColor    string     `json:"coverColor"`
	Prompt        string     `json:"prompt"`
	TaskID        string     `json:"taskId"`
	ConversionID1 string     `json:"conversionId1,omitempty"`
	ConversionID2 string     `json:"conversionId2,omitempty"`
	ETA           int        `json:"eta"`
	AudioURL      string     `json:"audioUrl,omitempty"`
	CoverImage    string     `json:"coverImage,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// Handle returns the external identifiers a poller needs for this song.
func (s *Song) Handle() Handle {
	return Handle{
		TaskID:        s.TaskID,
		ConversionID1: s.ConversionID1,
		ConversionID2: s.ConversionID2,
	}
}

// Handle holds the external service identifiers of a job.
type Handle struct {
	TaskID        string `json:"taskId"`
	ConversionID1 string `json:"conversionId1,omitempty"`
	ConversionID2 string `json:"conversionId2,omitempty"`
}

// ID type values accepted by the status endpoint
const (
	IDTypeTaskID       = "task_id"
	IDTypeConversionID = "conversion_id"
)

// StatusQuery returns the identifier to query and its id type. The primary
// conversion id is preferred over the task id.
func (h Handle) StatusQuery() (id, idType string) {
	if h.ConversionID1 != "" {
		return h.ConversionID1, IDTypeConversionID
	}
	return h.TaskID, IDTypeTaskID
}

// SongInput carries the fields fixed at song creation.
type SongInput struct {
	Recipient string
	Vibe      string
	Prompt    string
	Handle    Handle
	ETA       int
}

// SongPatch is a partial update applied by the store. Nil fields are left
// unchanged.
type SongPatch struct {
	Status     *SongStatus
	AudioURL   *string
	CoverImage *string
}

// StatusPatch builds a patch that only moves the status.
func StatusPatch(status SongStatus) SongPatch {
	return SongPatch{Status: &status}
}

// ReadyPatch builds the Processing -> Ready patch.
func ReadyPatch(audioURL, coverImage string) SongPatch {
	status := SongStatusReady
	return SongPatch{Status: &status, AudioURL: &audioURL, CoverImage: &coverImage}
}
