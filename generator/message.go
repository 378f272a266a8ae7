package generator

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// StreamChunk is one unit of a streaming generation. Exactly one chunk per
// stream carries Done; a failed stream carries Err on that terminal chunk.
// FullText is only populated on the terminal chunk.
type StreamChunk struct {
	Delta    string
	FullText string
	Done     bool
	Err      error
}
