/*
Package randx generates the server-side identifiers of the protocol:
public user ids and story ids.
*/
package randx

import "github.com/google/uuid"

// ID returns a fresh UUID v4 string. Used for every PublicUserID and
// StoryID the server hands out.
func ID() string {
	return uuid.New().String()
}
