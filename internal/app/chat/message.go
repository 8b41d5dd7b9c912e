package chat

import (
	"strings"
	"unicode/utf8"

	"zimage/internal/pkg/errs"
)

// FrameType discriminates inbound chat frames.
type FrameType string

const (
	TypeMessage      FrameType = "message"
	TypeSystem       FrameType = "system"
	TypeOnlineUpdate FrameType = "online_update"
	TypeDelete       FrameType = "delete"
)

const (
	// MaxContentChars is the longest chat message accepted for sending, counted in characters.
	MaxContentChars = 500

	// MaxActivityLogs caps the join/leave history kept in memory.
	MaxActivityLogs = 100
)

// Message is one chat line, either received live or loaded from history.
type Message struct {
	ID          int64     `json:"id,omitempty"`
	Type        FrameType `json:"type"`
	UserID      *int64    `json:"user_id,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Content     string    `json:"content"`
	Timestamp   string    `json:"timestamp"`
	IsAdmin     bool      `json:"is_admin,omitempty"`
}

// OnlineUser is one entry of the online list. Username and UserID are only sent to admins.
type OnlineUser struct {
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	UserID      *int64 `json:"user_id,omitempty"`
}

// ActivityLog records a join or leave.
type ActivityLog struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// inboundFrame is the union of every field the server may put in a frame.
// Pointer fields distinguish "absent" from "present but empty".
type inboundFrame struct {
	Message

	MessageID    int64          `json:"message_id,omitempty"`
	OnlineCount  *int           `json:"online_count,omitempty"`
	OnlineUsers  *[]OnlineUser  `json:"online_users,omitempty"`
	Activity     *ActivityLog   `json:"activity,omitempty"`
	ActivityLogs *[]ActivityLog `json:"activity_logs,omitempty"`
}

type outboundFrame struct {
	Content string `json:"content"`
}

// Validate checks text the way Send does, returning the reason it would be dropped.
func Validate(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errs.NewError(errs.ErrMessageEmpty)
	}
	if utf8.RuneCountInString(text) > MaxContentChars {
		return errs.NewError(errs.ErrMessageContentTooLong)
	}
	return nil
}
