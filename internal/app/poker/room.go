/*
Package poker contains the room synchronization core for the planning poker
server.

This file defines the Room aggregate and its participants. A Room holds the
complete in-memory state of one estimation session: its users, the ordered
list of stories, the owner, and the currently active story. Rooms and user
records live for the lifetime of the process; disconnecting only marks a
user inactive so a later connection with the same token resumes the same
public identity and vote history.
*/
package poker

import (
	"time"

	"github.com/rs/zerolog"

	"scrumpoker/internal/pkg/logx"
	"scrumpoker/internal/pkg/randx"
)

// Distinct key types for the two identity layers and for story references.
// A UserToken is the caller-supplied private key of a participant and never
// appears in any outbound payload; the PublicUserID is the server-generated
// pseudonym other participants see and the key under which votes are
// recorded.
type (
	RoomToken    string
	UserToken    string
	PublicUserID string
	StoryID      string
)

// User is one participant's record within a room.
type User struct {
	Token    UserToken
	PublicID PublicUserID
	Name     string
	Role     UserRole
	Active   bool

	// sender is the outbound queue of the participant's current
	// connection, nil while disconnected.
	sender *Outbox
}

// Story is a work item subject to estimation.
type Story struct {
	ID          StoryID
	URL         string
	Description string
	State       StoryState
	Votes       map[PublicUserID]Vote
}

// Room is the in-memory aggregate for one estimation session. All access
// happens under the Registry's lock; Room itself carries no synchronization.
type Room struct {
	Token       RoomToken
	Users       map[UserToken]*User
	Stories     []*Story
	Owner       *PublicUserID
	ActiveStory *StoryID
	CreatedAt   time.Time

	logger zerolog.Logger
}

func newRoom(token RoomToken) *Room {
	return &Room{
		Token:     token,
		Users:     make(map[UserToken]*User),
		CreatedAt: time.Now(),
		logger:    logx.Logger().With().Str("room_token", string(token)).Logger(),
	}
}

// admit returns the user record for the given token, creating it with a
// fresh PublicUserID on first admission, and marks it active. The first
// participant ever admitted becomes the room owner.
func (r *Room) admit(token UserToken) *User {
	u, ok := r.Users[token]
	if !ok {
		u = &User{
			Token:    token,
			PublicID: PublicUserID(randx.ID()),
			Role:     RoleVoter,
		}
		r.Users[token] = u
	}
	u.Active = true

	if r.Owner == nil {
		owner := u.PublicID
		r.Owner = &owner
		r.logger.Info().Str("public_id", string(owner)).Msg("First participant becomes room owner")
	}
	return u
}

func (r *Room) isOwner(id PublicUserID) bool {
	return r.Owner != nil && *r.Owner == id
}

func (r *Room) setProfile(token UserToken, name string, role UserRole) {
	if u, ok := r.Users[token]; ok {
		u.Name = name
		u.Role = role
	}
}

// addStories appends new stories in submitted order, each starting in the
// Voting state with an empty vote map.
func (r *Room) addStories(items []storyItem) {
	for _, item := range items {
		r.Stories = append(r.Stories, &Story{
			ID:          StoryID(randx.ID()),
			URL:         item.URL,
			Description: item.Description,
			State:       StateVoting,
			Votes:       make(map[PublicUserID]Vote),
		})
	}
}

// removeStory deletes the story with the given id, reporting whether it was
// present.
func (r *Room) removeStory(id StoryID) bool {
	for i, s := range r.Stories {
		if s.ID == id {
			r.Stories = append(r.Stories[:i], r.Stories[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Room) story(id StoryID) *Story {
	for _, s := range r.Stories {
		if s.ID == id {
			return s
		}
	}
	return nil
}
