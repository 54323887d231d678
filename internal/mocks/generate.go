// Package mocks provides gomock implementations of the client's ports.
//
// To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sender_mock.go github.com/dmitrijs2005/bookshelf/internal/client/transport Sender
