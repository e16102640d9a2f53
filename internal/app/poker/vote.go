/*
Package poker contains the room synchronization core for the planning poker
server: the shared state model for rooms, users, stories and votes, the
command protocol that mutates it, and the broadcast fan-out that keeps every
connected client's view consistent.

This file defines the value vocabulary of the protocol: user roles, story
states, and the Vote tagged union with its exact wire encoding.
*/
package poker

import (
	"encoding/json"
	"fmt"
)

// UserRole determines whether a participant's vote counts towards the
// auto-reveal condition of a story.
type UserRole string

const (
	RoleVoter   UserRole = "Voter"
	RoleWatcher UserRole = "Watcher"
)

// UnmarshalJSON rejects anything but the two known roles so that a payload
// carrying an unknown role is discarded as a whole.
func (ur *UserRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch UserRole(s) {
	case RoleVoter, RoleWatcher:
		*ur = UserRole(s)
		return nil
	}
	return fmt.Errorf("unknown user role %q", s)
}

// StoryState is the voting lifecycle of a story. The only transition is
// Voting to Finished, and it is one-way.
type StoryState string

const (
	StateVoting   StoryState = "Voting"
	StateFinished StoryState = "Finished"
)

// VoteKind discriminates the Vote tagged union.
type VoteKind int

const (
	// VoteNumber is a numeric estimate from the room's vote-option scale.
	VoteNumber VoteKind = iota

	// VoteCoffee asks for a break.
	VoteCoffee

	// VoteQuestion signals the story needs clarification.
	VoteQuestion

	// VoteHidden is a presentation-only placeholder produced by the
	// visibility policy. It is never stored in a story's vote map.
	VoteHidden
)

// Vote is a participant's estimate for a story.
//
// Wire encoding: {"Value": n} for numeric votes, or one of the strings
// "Coffee", "Question", "Hidden" for the unit variants.
type Vote struct {
	Kind  VoteKind
	Value float64
}

func NumericVote(v float64) Vote { return Vote{Kind: VoteNumber, Value: v} }
func CoffeeVote() Vote           { return Vote{Kind: VoteCoffee} }
func QuestionVote() Vote         { return Vote{Kind: VoteQuestion} }
func HiddenVote() Vote           { return Vote{Kind: VoteHidden} }

func (v Vote) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case VoteNumber:
		return json.Marshal(struct {
			Value float64 `json:"Value"`
		}{v.Value})
	case VoteCoffee:
		return []byte(`"Coffee"`), nil
	case VoteQuestion:
		return []byte(`"Question"`), nil
	case VoteHidden:
		return []byte(`"Hidden"`), nil
	}
	return nil, fmt.Errorf("unknown vote kind %d", v.Kind)
}

func (v *Vote) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "Coffee":
			*v = CoffeeVote()
		case "Question":
			*v = QuestionVote()
		case "Hidden":
			*v = HiddenVote()
		default:
			return fmt.Errorf("unknown vote variant %q", s)
		}
		return nil
	}

	var aux struct {
		Value *float64 `json:"Value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Value == nil {
		return fmt.Errorf("vote object is missing the Value field")
	}
	*v = NumericVote(*aux.Value)
	return nil
}
