package server

import (
	"net/http"
	"strings"
	"unicode/utf8"
)

// playerHeader carries the display name of a signed-in player. Requests
// without it play as the anonymous explorer.
const playerHeader = "X-Player-Name"

const maxPlayerName = 64

// Identity resolves who is playing a round.
type Identity struct {
	AnonymousName string
}

// PlayerName picks the name from the request body, then the player header,
// then the anonymous name.
func (id Identity) PlayerName(r *http.Request, fromBody string) string {
	for _, name := range []string{fromBody, r.Header.Get(playerHeader)} {
		if name = strings.TrimSpace(name); name != "" {
			return truncate(name, maxPlayerName)
		}
	}
	return id.AnonymousName
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
