// Package mocks provides mock implementations for testing the gateway and
// HTTP layers.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks.
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	client := mocks.NewMockDoer(ctrl)
//	client.EXPECT().Do(gomock.Any()).Return(resp, nil)
package mocks

// Generate mock for the gateway's HTTP transport interface. This creates
// MockDoer so tests can script backend responses without a live server.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=doer_mock.go github.com/pressgate/pressgate/internal/gateway Doer
