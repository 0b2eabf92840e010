package domain

// HistoryWindow is the number of trailing turns forwarded to the
// completion provider.
const HistoryWindow = 5

// TurnMessage is one entry of the client-submitted history window.
type TurnMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is the body of POST /agent. ID is the target conversation;
// empty means "create a new one". IsRegenerating asks for the previous
// assistant reply to be discarded before answering again.
type TurnRequest struct {
	Messages       []TurnMessage `json:"messages"`
	ID             string        `json:"id,omitempty"`
	IsRegenerating bool          `json:"isRegenerating,omitempty"`
}

// Window returns the trailing HistoryWindow turns of the request.
func (r *TurnRequest) Window() []TurnMessage {
	if len(r.Messages) <= HistoryWindow {
		return r.Messages
	}
	return r.Messages[len(r.Messages)-HistoryWindow:]
}
