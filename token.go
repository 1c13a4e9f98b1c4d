package rsm

import (
	"net/http"
	"strings"
	"time"
)

// BuildToken reassembles the session token from the cookies the server set
// on login. Each cookie becomes "name=value; Path=<path>; HttpOnly;
// Expires=<RFC1123 GMT>", with the path defaulting to "/" and the expiry
// taken from the cookie's Expires field, from Max-Age added to now when
// Expires is absent, or left empty when neither is present. Multiple
// cookies are joined with "; ". The result is replayed verbatim in the
// Cookie header on subsequent requests.
func BuildToken(cookies []*http.Cookie, now time.Time) string {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		expires := ""
		switch {
		case !c.Expires.IsZero():
			expires = c.Expires.UTC().Format(http.TimeFormat)
		case c.MaxAge > 0:
			expires = now.Add(time.Duration(c.MaxAge) * time.Second).UTC().Format(http.TimeFormat)
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		parts = append(parts, c.Name+"="+c.Value+"; Path="+path+"; HttpOnly; Expires="+expires)
	}
	return strings.ReplaceAll(strings.Join(parts, "; "), "\n", "")
}
