/*
Package poker contains the room synchronization core for the planning poker
server.

This file defines the wire protocol. Every frame, inbound and outbound, is
UTF-8 text of the shape "<command> <json-payload>". The lone exception is
the "ping" keep-alive, which carries no payload and is ignored.
*/
package poker

import (
	"encoding/json"
	"strings"
)

// Inbound command words.
const (
	cmdSetProfile     = "user"
	cmdAddStories     = "stories"
	cmdRemoveStory    = "remove_story"
	cmdCastVote       = "vote"
	cmdFinishVoting   = "finish"
	cmdSetActiveStory = "active_story"

	framePing = "ping"
)

// Outbound frame words.
const (
	frameConfig  = "config"
	frameUsers   = "users"
	frameStories = "stories"
)

// splitFrame separates the command word from its payload at the first
// space. A frame without a space is a bare command with an empty payload.
func splitFrame(frame string) (cmd, payload string) {
	if i := strings.IndexByte(frame, ' '); i >= 0 {
		return frame[:i], frame[i+1:]
	}
	return frame, ""
}

// encodeFrame renders an outbound frame from its word and payload.
func encodeFrame(word string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(word)+1+len(body))
	frame = append(frame, word...)
	frame = append(frame, ' ')
	frame = append(frame, body...)
	return frame, nil
}

// Inbound payloads.

type profilePayload struct {
	UserName string   `json:"user_name"`
	Role     UserRole `json:"role"`
}

type storyItem struct {
	URL         string `json:"story_url"`
	Description string `json:"story_description"`
}

type addStoriesPayload struct {
	Stories []storyItem `json:"stories"`
}

// storyRefPayload is the shared shape of remove_story, finish and
// active_story commands.
type storyRefPayload struct {
	StoryID StoryID `json:"story_uuid"`
}

type votePayload struct {
	StoryID StoryID `json:"story_uuid"`
	Vote    Vote    `json:"vote"`
}

// Outbound views.

type configView struct {
	VoteOptions      []float64    `json:"vote_options"`
	Owner            PublicUserID `json:"owner"`
	Me               PublicUserID `json:"me"`
	RoomCreationTime string       `json:"room_creation_time"`
}

type rosterEntry struct {
	PublicID PublicUserID `json:"pub_user_uuid"`
	Name     string       `json:"user_name"`
	Role     UserRole     `json:"role"`
	IsThis   bool         `json:"is_this"`
	IsActive bool         `json:"is_active"`
}

type rosterView struct {
	Users []rosterEntry `json:"users"`
}

type storyView struct {
	ID    StoryID               `json:"story_uuid"`
	Story storyItem             `json:"story"`
	State StoryState            `json:"state"`
	Votes map[PublicUserID]Vote `json:"votes"`
}

type storiesView struct {
	Stories     []storyView `json:"stories"`
	ActiveStory *StoryID    `json:"active_story"`
}

// roomCreationTimeFormat renders the config view's timestamp.
const roomCreationTimeFormat = "2006-01-02 15:04:05"
