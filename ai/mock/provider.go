// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/chronicle/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock oracle and embedder instances.
type MockProvider struct {
	oracle   *MockOracle
	embedder *MockEmbedder
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockOracle()/GetMockEmbedder() to access concrete types for test
// assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		oracle:   NewMockOracle(),
		embedder: NewMockEmbedder(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(oracle *MockOracle, embedder *MockEmbedder) ai.Provider {
	return &MockProvider{
		oracle:   oracle,
		embedder: embedder,
	}
}

// Oracle returns the mock oracle.
func (p *MockProvider) Oracle() ai.Oracle {
	return p.oracle
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockOracle returns the underlying mock oracle for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockOracle() *MockOracle {
	return p.oracle
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}
