package lotofacil

import "context"

// GameService defines the operations exposed to the HTTP and CLI boundaries
type GameService interface {
	// Status returns the quota state of an identity
	Status(ctx context.Context, userID string) (*StatusInfo, error)

	// Generate runs one quota-checked batch of games
	Generate(ctx context.Context, userID string, req GenerateRequest) (*GenerateResponse, error)

	// ActivateCode redeems an activation code for an identity
	ActivateCode(ctx context.Context, userID, code string) (*ActivationResult, error)

	// History returns past generations, newest first
	History(ctx context.Context, userID string) ([]HistoryEntry, error)

	// ClearHistory removes past generations
	ClearHistory(ctx context.Context, userID string) error

	// Metrics returns a snapshot of the generation metrics
	Metrics() GenerationMetrics
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

var _ GameService = (*Service)(nil)
