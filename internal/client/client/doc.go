// Package client bootstraps the local side of the bookshelf client.
//
// # Overview
//
//  1. InitDatabase / RunMigrations open the SQLite file and apply embedded
//     goose migrations.
//  2. OpenStore picks the metadata backend named in the configuration
//     (sqlite, redis or memory) and returns it with a close function.
//
// # Error Handling
//
// Errors are wrapped with context; an unsupported backend name matches
// metadata.ErrUnknownBackend via errors.Is.
package client
