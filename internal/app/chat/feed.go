package chat

import (
	"encoding/json"
	"slices"
	"sync"

	"zimage/internal/pkg/errs"
)

// Feed is the state built from inbound frames: messages, presence and activity.
type Feed struct {
	mu          sync.RWMutex
	messages    []Message
	onlineCount int
	onlineUsers []OnlineUser
	activity    []ActivityLog
}

// FeedState is a point-in-time copy of a Feed.
type FeedState struct {
	Messages    []Message
	OnlineCount int
	OnlineUsers []OnlineUser
	Activity    []ActivityLog
}

// NewFeed returns an empty Feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Apply decodes one raw frame and applies every update it carries.
// A frame that cannot be decoded leaves the feed untouched.
func (f *Feed) Apply(raw []byte) error {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return errs.Wrap(errs.ErrInvalidJSONFormat, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if frame.OnlineCount != nil {
		f.onlineCount = *frame.OnlineCount
	}
	if frame.OnlineUsers != nil {
		f.onlineUsers = slices.Clone(*frame.OnlineUsers)
	}
	if frame.Activity != nil {
		if len(f.activity) >= MaxActivityLogs {
			f.activity = slices.Clone(f.activity[len(f.activity)-(MaxActivityLogs-1):])
		}
		f.activity = append(f.activity, *frame.Activity)
	}
	if frame.ActivityLogs != nil {
		f.activity = slices.Clone(*frame.ActivityLogs)
	}

	switch frame.Type {
	case TypeDelete:
		if frame.MessageID != 0 {
			f.messages = slices.DeleteFunc(f.messages, func(m Message) bool { return m.ID == frame.MessageID })
		}
	case TypeMessage:
		f.messages = append(f.messages, frame.Message)
	}

	return nil
}

// ReplaceMessages swaps the message list, used to seed the feed from history.
func (f *Feed) ReplaceMessages(msgs []Message) {
	f.mu.Lock()
	f.messages = slices.Clone(msgs)
	f.mu.Unlock()
}

// Snapshot returns a copy that callers may keep and modify.
func (f *Feed) Snapshot() FeedState {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return FeedState{
		Messages:    slices.Clone(f.messages),
		OnlineCount: f.onlineCount,
		OnlineUsers: slices.Clone(f.onlineUsers),
		Activity:    slices.Clone(f.activity),
	}
}
