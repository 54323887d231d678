package api

import "github.com/dmitrijs2005/bookshelf/internal/schema"

const (
	reasonMissingToken = "missing token"
	reasonExpiredToken = "expired token"
	reasonInvalidToken = "invalid token"
)

var envelope = []schema.Field{
	schema.F("status", schema.Type(schema.Number)),
	schema.F("response", schema.Type(schema.String)),
}

func withEnvelope(fields ...schema.Field) schema.Schema {
	return schema.Record(append(append([]schema.Field{}, envelope...), fields...)...)
}

var (
	tokenResponseSchema = withEnvelope(
		schema.F("token", schema.Nullable(schema.Type(schema.String))),
	)

	createAccountResponseSchema = withEnvelope(
		schema.F("username", schema.Type(schema.String)),
	)

	bookSchema = schema.Record(
		schema.F("id", schema.Type(schema.String)),
		schema.F("title", schema.Type(schema.String)),
		schema.F("size", schema.Type(schema.Number)),
		schema.F("metadata", schema.Dictionary(schema.Type(schema.String))),
	)

	searchResponseSchema = withEnvelope(
		schema.F("results", schema.List(bookSchema)),
	)

	searchCountResponseSchema = withEnvelope(
		schema.F("count", schema.Type(schema.Number)),
	)

	suggestionSchema = schema.Record(
		schema.F("id", schema.Type(schema.String)),
		schema.F("text", schema.Type(schema.String)),
		schema.F("tag", schema.Type(schema.String)),
	)

	suggestionsSchema = schema.List(suggestionSchema)

	uploadResponseSchema = withEnvelope(
		schema.F("id", schema.Type(schema.String)),
	)

	unauthorizedResponseSchema = schema.Record(
		schema.F("status", schema.Literal(401)),
		schema.F("response", schema.Literal("unauthorized")),
		schema.F("reason", schema.Union(
			schema.Literal(reasonMissingToken),
			schema.Literal(reasonExpiredToken),
			schema.Literal(reasonInvalidToken),
		)),
	)
)
