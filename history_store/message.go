package historystore

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Id        string
	SessionId string
	Role      string
	Content   string
	Metadata  map[string]any
	Sequence  int
	CreatedAt time.Time
}

func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}
