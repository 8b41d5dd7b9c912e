package api

import (
	"context"
	"net/http"
	"strconv"

	"zimage/internal/app/chat"
	"zimage/internal/pkg/req"
)

// ChatService covers the chatroom's REST side: history, presence and moderation.
type ChatService struct{ c *Client }

// OnlineInfo is the presence summary served outside the socket.
type OnlineInfo struct {
	OnlineCount int               `json:"online_count"`
	Users       []chat.OnlineUser `json:"users"`
}

type messageList struct {
	Messages []chat.Message `json:"messages"`
}

// History returns the most recent messages, oldest first.
func (s *ChatService) History(ctx context.Context, limit int) ([]chat.Message, error) {
	return s.history(ctx, "/api/chat/messages", limit)
}

// AdminHistory is History with the sender's user id attached. Admin only.
func (s *ChatService) AdminHistory(ctx context.Context, limit int) ([]chat.Message, error) {
	return s.history(ctx, "/api/chat/messages/admin", limit)
}

func (s *ChatService) history(ctx context.Context, path string, limit int) ([]chat.Message, error) {
	var out messageList
	if err := s.c.Do(ctx, http.MethodGet, path, req.NewQuery().Int("limit", limit).Values(), nil, &out); err != nil {
		return nil, err
	}

	// History rows carry no type; they are ordinary chat lines.
	for i := range out.Messages {
		if out.Messages[i].Type == "" {
			out.Messages[i].Type = chat.TypeMessage
		}
	}
	return out.Messages, nil
}

// Online returns the current presence.
func (s *ChatService) Online(ctx context.Context) (*OnlineInfo, error) {
	var out OnlineInfo
	if err := s.c.Do(ctx, http.MethodGet, "/api/chat/online", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMessage removes a message for everyone. Admin only.
func (s *ChatService) DeleteMessage(ctx context.Context, id int64) error {
	return s.c.Do(ctx, http.MethodDelete, "/api/chat/messages/"+strconv.FormatInt(id, 10), nil, nil, nil)
}
