// Package auth holds the client-side view of a bearer-token session.
//
// A token's claims are decoded (never verified: the server is the authority)
// into a Context carrying the subject, validity window and roles. Manager keeps
// the current session in a key/value Store, re-reading it on every access, and
// answers role-based authorization questions for the rest of the client.
package auth

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/bookshelf/internal/result"
	"github.com/dmitrijs2005/bookshelf/internal/schema"
)

// Context is the decoded identity of an authenticated user.
type Context struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Roles     []string
}

// Session is a Context together with the raw bearer token it was built from.
// Api operations that need authorization take a Session explicitly.
type Session struct {
	Context
	Token string
}

var claimsSchema = schema.Record(
	schema.F("sub", schema.Type(schema.String)),
	schema.F("iat", schema.Type(schema.Number)),
	schema.F("exp", schema.Type(schema.Number)),
	schema.F("roles", schema.List(schema.Type(schema.Any))),
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// TryCreate decodes the claims segment of a three-part token and checks that
// the token is valid at now.
func TryCreate(token string, now time.Time) result.Result[Context, string] {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return result.Failuref[Context]("token must have 3 components, got %d", len(parts))
	}

	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return result.Failuref[Context]("could not decode claims: %v", err)
	}

	var claims any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return result.Failuref[Context]("claims are not valid JSON: %v", err)
	}

	if res := claimsSchema.Validate(claims); res.IsError() {
		return result.Failuref[Context]("invalid claims: %s", res.Error())
	}

	m := claims.(map[string]any)
	iat, _ := m["iat"].(float64)
	exp, _ := m["exp"].(float64)
	rawRoles, _ := m["roles"].([]any)

	for _, claim := range []struct {
		name  string
		value float64
	}{{"iat", iat}, {"exp", exp}} {
		if claim.value < 0 || claim.value > maxUnixSeconds {
			return result.Failuref[Context]("claim %s %v is out of range", claim.name, claim.value)
		}
	}

	c := Context{
		Subject:   m["sub"].(string),
		IssuedAt:  fromUnixSeconds(iat),
		ExpiresAt: fromUnixSeconds(exp),
		Roles:     make([]string, 0, len(rawRoles)),
	}
	for _, r := range rawRoles {
		if s, ok := r.(string); ok {
			c.Roles = append(c.Roles, s)
			continue
		}
		c.Roles = append(c.Roles, fmt.Sprint(r))
	}

	if c.IssuedAt.After(now) {
		return result.Failuref[Context]("token issued in the future (iat %s)", c.IssuedAt.UTC().Format(time.RFC3339))
	}
	if !c.ExpiresAt.After(now) {
		return result.Failuref[Context]("token expired at %s", c.ExpiresAt.UTC().Format(time.RFC3339))
	}

	return result.Success[Context, string](c)
}

// maxUnixSeconds is 9999-12-31T23:59:59Z, the last instant RFC 3339 can
// represent.
const maxUnixSeconds = 253402300799

func fromUnixSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9))
}

// IsExpired reports whether the context is no longer valid now.
func (c Context) IsExpired() bool {
	return c.IsExpiredAt(time.Now())
}

func (c Context) IsExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

func (c Context) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}
