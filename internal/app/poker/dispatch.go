/*
Package poker contains the room synchronization core for the planning poker
server.

This file is the command dispatcher. Each handler acquires the registry
write lock for the full mutation plus the broadcast that follows it, and
every command is a silent no-op when its room does not exist. Malformed
payloads, commands on missing stories, and owner-only commands from
non-owners are all rejected without an error frame to the sender; the
client learns about them only through the absence of a state update.
*/
package poker

import "encoding/json"

// handleFrame routes one inbound text frame. "ping" is a keep-alive and is
// dropped before dispatch.
func (s *Session) handleFrame(raw []byte) {
	frame := string(raw)
	if frame == framePing || frame == framePing+"\n" {
		return
	}

	cmd, payload := splitFrame(frame)
	switch cmd {
	case cmdSetProfile:
		s.handleSetProfile(payload)
	case cmdAddStories:
		s.handleAddStories(payload)
	case cmdRemoveStory:
		s.handleRemoveStory(payload)
	case cmdCastVote:
		s.handleCastVote(payload)
	case cmdFinishVoting:
		s.handleFinishVoting(payload)
	case cmdSetActiveStory:
		s.handleSetActiveStory(payload)
	default:
		s.logger.Warn().Str("command", cmd).Msg("Unsupported command")
	}
}

// handleSetProfile updates the sender's display name and role.
func (s *Session) handleSetProfile(payload string) {
	var p profilePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid user payload")
		return
	}

	s.registry.Update(s.roomToken, func(r *Room) {
		r.setProfile(s.userToken, p.UserName, p.Role)
		r.broadcastRoster()
	})
}

// handleAddStories appends the submitted stories in order. Deliberately not
// owner-restricted: any member may propose work items.
func (s *Session) handleAddStories(payload string) {
	var p addStoriesPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid stories payload")
		return
	}

	s.registry.Update(s.roomToken, func(r *Room) {
		r.addStories(p.Stories)
		r.broadcastStories()
	})
}

// handleRemoveStory removes a story. Owner only; broadcasts only when a
// story was actually removed.
func (s *Session) handleRemoveStory(payload string) {
	var p storyRefPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid remove_story payload")
		return
	}

	s.registry.Update(s.roomToken, func(r *Room) {
		if !r.isOwner(s.publicID) {
			s.logger.Warn().Msg("remove_story from non-owner rejected")
			return
		}
		if r.removeStory(p.StoryID) {
			r.broadcastStories()
		}
	})
}

// handleCastVote records or overwrites the sender's vote on a story that is
// still open for voting. Not owner-restricted. Hidden is a display-only
// placeholder and is never written into a vote map.
func (s *Session) handleCastVote(payload string) {
	var p votePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid vote payload")
		return
	}
	if p.Vote.Kind == VoteHidden {
		s.logger.Warn().Msg("Rejected attempt to cast a Hidden vote")
		return
	}

	s.registry.Update(s.roomToken, func(r *Room) {
		story := r.story(p.StoryID)
		if story == nil {
			return
		}
		if story.State != StateVoting {
			s.logger.Debug().Str("story_id", string(p.StoryID)).Msg("Story already finished, vote ignored")
			return
		}

		u, ok := r.Users[s.userToken]
		if !ok {
			return
		}
		story.Votes[u.PublicID] = p.Vote
		r.broadcastStories()
	})
}

// handleFinishVoting moves a story to Finished, the one-way end of its
// lifecycle. Owner only.
func (s *Session) handleFinishVoting(payload string) {
	var p storyRefPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid finish payload")
		return
	}

	s.registry.Update(s.roomToken, func(r *Room) {
		if !r.isOwner(s.publicID) {
			s.logger.Warn().Msg("finish from non-owner rejected")
			return
		}
		if story := r.story(p.StoryID); story != nil {
			story.State = StateFinished
			r.broadcastStories()
		}
	})
}

// handleSetActiveStory points the room at a story. Owner only. The id is
// stored without an existence check, matching the protocol's contract.
func (s *Session) handleSetActiveStory(payload string) {
	var p storyRefPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid active_story payload")
		return
	}

	s.registry.Update(s.roomToken, func(r *Room) {
		if !r.isOwner(s.publicID) {
			s.logger.Warn().Msg("active_story from non-owner rejected")
			return
		}
		r.ActiveStory = &p.StoryID
		r.broadcastStories()
	})
}
