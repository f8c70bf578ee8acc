package familywall

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const sessionCookieName = "JSESSIONID"

// cookieTemplate reproduces the browser cookie the web app sends. The
// analytics values are static and must stay byte-for-byte identical.
const cookieTemplate = "_gid=GA1.2.2118125424.1726621203; _gat_gtag_UA_30098956_2=1; _gat_gtag_UA_37056134_1=1; JSESSIONID=%s; _ga_5GHHS7PK50=GS1.1.1726621036.1.1.1726622248.0.0.0; _ga_QEJNR13YN6=GS1.1.1726621037.1.1.1726622248.0.0.0; _ga=GA1.1.600776544.1726621203"

// Session holds the credentials produced by Login. It is immutable; the zero
// value is an unauthenticated session.
type Session struct {
	token  string
	cookie string
}

// SessionFromToken builds a Session around an existing session token.
func SessionFromToken(token string) Session {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}
	}
	return Session{token: token, cookie: fmt.Sprintf(cookieTemplate, token)}
}

// Token returns the session token, empty when unauthenticated.
func (s Session) Token() string { return s.token }

// CookieHeader returns the Cookie header value, empty when unauthenticated.
func (s Session) CookieHeader() string { return s.cookie }

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool { return s.token != "" }

// apply adds the CSRF and Cookie headers when the session is authenticated.
func (s Session) apply(h http.Header) {
	if !s.Authenticated() {
		return
	}
	h.Set("tokencsrf", s.token)
	h.Set("Cookie", s.cookie)
}

// sessionToken returns the first non-empty JSESSIONID cookie.
func sessionToken(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if c.Name == sessionCookieName && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// Fields is a request body. Values are sent in their fmt.Sprint form.
type Fields map[string]any

// Values form-encodes the fields.
func (f Fields) Values() url.Values {
	values := make(url.Values, len(f))
	for k, v := range f {
		values.Set(k, fieldString(v))
	}
	return values
}

// merge returns a copy of f with every entry of over applied on top.
func (f Fields) merge(over Fields) Fields {
	out := make(Fields, len(f)+len(over))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func fieldString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
