package schema

import (
	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/bookshelf/internal/result"
)

// Decode validates v against s and, on success, maps it onto T using the
// json struct tags of T.
func Decode[T any](s Schema, v any) result.Result[T, string] {
	return result.Then(s.Validate(v), func(struct{}) result.Result[T, string] {
		var out T
		b, err := json.Marshal(v)
		if err != nil {
			return result.Failuref[T]("could not re-encode %s: %v", s, err)
		}
		if err := json.Unmarshal(b, &out); err != nil {
			return result.Failuref[T]("value matched %s but could not be decoded: %v", s, err)
		}
		return result.Success[T, string](out)
	})
}
