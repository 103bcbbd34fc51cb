package webhook

// Payload is the body of one Instagram webhook delivery.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one event batch inside a delivery. Direct messages and story
// mentions arrive under "messaging"; comments and post mentions arrive
// under "changes".
type Entry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging,omitempty"`
	Changes   []Change         `json:"changes,omitempty"`
}

// Principal identifies a messaging participant.
type Principal struct {
	ID string `json:"id"`
}

// MessagingEvent is a direct message or a story mention.
type MessagingEvent struct {
	Sender       Principal     `json:"sender"`
	Recipient    Principal     `json:"recipient"`
	Timestamp    int64         `json:"timestamp"`
	Message      *MessageEvent `json:"message,omitempty"`
	StoryMention *StoryMention `json:"story_mention,omitempty"`
}

// MessageEvent carries the text of a direct message. IsEcho marks the
// platform's replay of a message this system itself sent.
type MessageEvent struct {
	MID    string `json:"mid"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo,omitempty"`
}

// StoryMention identifies the story media mentioning the tenant.
type StoryMention struct {
	ID string `json:"id"`
}

// Change is a field-level event such as a new comment.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue carries comment data for "comments" changes.
type ChangeValue struct {
	ID   string     `json:"id"`
	Text string     `json:"text"`
	From CommentWho `json:"from"`
}

// CommentWho identifies the commenting user.
type CommentWho struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
