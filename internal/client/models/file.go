package models

// File statuses as reported by the server.
const (
	FileStatusRequested = "requested"
	FileStatusReceived  = "received"
)

// ServerFile is a server-side file record attached to an entry. The server
// creates it as a placeholder (status requested) during entry save and
// confirms it (status received) once the binary payload arrives.
type ServerFile struct {
	Id      string `json:"id"`
	EntryId string `json:"entry_id"`
	Name    string `json:"name"`
	MIME    string `json:"mime"`
	Size    int64  `json:"size"`
	Status  string `json:"status"`

	// AttachedKey echoes the client correlation key from the save request;
	// empty on records that were confirmed in an earlier pass.
	AttachedKey string `json:"attached_key,omitempty"`
}
