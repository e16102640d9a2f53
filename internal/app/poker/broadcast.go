/*
Package poker contains the room synchronization core for the planning poker
server.

This file is the broadcast engine: it renders the roster and stories views
and pushes them to every connected member of a room. Both views are
observer-relative (the is_this flag, vote hiding), so the payload is
recomputed per recipient rather than rendered once and shared. Callers must
hold the registry write lock, which is what guarantees a broadcast reflects
exactly the state of the mutation that triggered it.
*/
package poker

// broadcastRoster pushes the users view to every connected member. The
// roster lists every user of the room, active or not.
func (r *Room) broadcastRoster() {
	for _, recipient := range r.Users {
		if recipient.sender == nil {
			continue
		}

		view := rosterView{Users: make([]rosterEntry, 0, len(r.Users))}
		for _, u := range r.Users {
			view.Users = append(view.Users, rosterEntry{
				PublicID: u.PublicID,
				Name:     u.Name,
				Role:     u.Role,
				IsThis:   u.Token == recipient.Token,
				IsActive: u.Active,
			})
		}

		r.push(recipient, frameUsers, view)
	}
}

// broadcastStories pushes the stories view to every connected member, with
// each story's vote map filtered through the visibility policy for that
// recipient.
func (r *Room) broadcastStories() {
	for _, recipient := range r.Users {
		if recipient.sender == nil {
			continue
		}

		view := storiesView{
			Stories:     make([]storyView, 0, len(r.Stories)),
			ActiveStory: r.ActiveStory,
		}
		for _, s := range r.Stories {
			view.Stories = append(view.Stories, storyView{
				ID:    s.ID,
				Story: storyItem{URL: s.URL, Description: s.Description},
				State: s.State,
				Votes: visibleVotes(s, r.Users, recipient.PublicID),
			})
		}

		r.push(recipient, frameStories, view)
	}
}

// sendConfig delivers the per-connection config view to a freshly admitted
// user. Unlike the roster and stories views it is not re-broadcast on state
// changes.
func (r *Room) sendConfig(u *User, voteOptions []float64) {
	owner := u.PublicID
	if r.Owner != nil {
		owner = *r.Owner
	}

	r.push(u, frameConfig, configView{
		VoteOptions:      voteOptions,
		Owner:            owner,
		Me:               u.PublicID,
		RoomCreationTime: r.CreatedAt.Local().Format(roomCreationTimeFormat),
	})
}

// push encodes one frame and enqueues it for one recipient. A closed
// outbox only skips that recipient; delivery to the rest of the room
// proceeds.
func (r *Room) push(u *User, word string, payload any) {
	if u.sender == nil {
		return
	}

	frame, err := encodeFrame(word, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("frame", word).Msg("Failed to encode outbound frame")
		return
	}

	if !u.sender.Push(frame) {
		r.logger.Warn().
			Str("frame", word).
			Str("public_id", string(u.PublicID)).
			Msg("Recipient outbox closed, skipping")
	}
}
