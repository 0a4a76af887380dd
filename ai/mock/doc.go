// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Oracle, ai.Embedder,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	answer, err := mockProvider.Oracle().Generate(ctx, "prompt")
//
//	// Custom behavior injection
//	oracle := mock.NewMockOracle()
//	oracle.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
//	    return "85", nil
//	}
//
//	// Scripted responses, one per call
//	oracle := mock.ScriptedOracle("60", "61")
//
//	// Check call counts
//	count := oracle.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockOracle: Records prompts and returns "50" (a parseable score)
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockProvider: Aggregates mock oracle and embedder
//
// MockOracle additionally supports an artificial per-call Latency, which
// concurrency tests use to observe pool-capped parallelism.
package mock
