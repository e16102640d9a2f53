package poker

// visibleVotes computes the vote map of a story as one observer is allowed
// to see it. Pure with respect to its inputs; the returned map is always a
// fresh copy, never the story's live map.
//
// Votes are revealed to everyone once the story is Finished, or earlier
// once every active Voter has cast a vote. Until then the observer sees
// their own value and a Hidden placeholder for everyone else's entry. Keys
// are never dropped, so the presence of a vote stays distinguishable from
// its value.
func visibleVotes(story *Story, users map[UserToken]*User, observer PublicUserID) map[PublicUserID]Vote {
	revealed := story.State == StateFinished
	if !revealed {
		revealed = true
		for _, u := range users {
			if u.Role != RoleVoter || !u.Active {
				continue
			}
			if _, voted := story.Votes[u.PublicID]; !voted {
				revealed = false
				break
			}
		}
	}

	visible := make(map[PublicUserID]Vote, len(story.Votes))
	for id, v := range story.Votes {
		if revealed || id == observer {
			visible[id] = v
		} else {
			visible[id] = HiddenVote()
		}
	}
	return visible
}
