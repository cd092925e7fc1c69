package gridbase

// Record is the wire representation of one row as exchanged with the remote
// tabular-database API.
type Record struct {
	ID          string         `json:"id,omitempty"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

// RecordPage is one page of a list response, with the continuation offset.
type RecordPage struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}
