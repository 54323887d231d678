// Package transport performs single HTTP exchanges for the API layer and
// classifies each outcome as no response, a JSON response or a non-JSON
// response. Status codes are never errors at this level.
package transport
