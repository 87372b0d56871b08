package model

import "time"

const SessionIDLength = 5

// SessionIDAlphabet is the alphabet session codes are drawn from.
const SessionIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// UserSession is a shareable scoreboard identity. Holding the id is enough to read and mutate it.
type UserSession struct {
	ID             string    `json:"id"`
	CorrectCount   int       `json:"correct_count"`
	TotalCount     int       `json:"total_count"`
	Streak         int       `json:"streak"`
	HintCredits    int       `json:"hint_credits"`
	HintCap        int       `json:"hint_cap"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// ValidSessionID reports whether id has the shape of a session code.
func ValidSessionID(id string) bool {
	if len(id) != SessionIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
