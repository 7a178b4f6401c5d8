package report

// Entry is a received message as stored by the processor.
type Entry struct {
	Id        string  `json:"id"`
	GroupId   string  `json:"group_id"`
	ApiKey    string  `json:"api_key"`
	Signature string  `json:"signature"`
	Source    string  `json:"source"`
	DateAdded string  `json:"date_added"`
	Message   Message `json:"message"`
}

// Frames returns the frames of the outermost error.
func (e *Entry) Frames() []Frame {
	return e.Message.Details.Error.StackTrace
}
