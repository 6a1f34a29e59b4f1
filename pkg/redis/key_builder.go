package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Election key builders

func (kb *KeyBuilder) KeyElectionsAll() string {
	return kb.BuildKey(KeyElectionsAll)
}

func (kb *KeyBuilder) KeyElectionByID(electionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyElectionByID, electionID))
}

// Voting key builders

func (kb *KeyBuilder) KeyUserVoted(electionID, userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyUserVoted, electionID, userID))
}

func (kb *KeyBuilder) KeyElectionResults(electionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyElectionResults, electionID))
}

func (kb *KeyBuilder) KeyLiveResults(electionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyLiveResults, electionID))
}

func (kb *KeyBuilder) KeyEligibleCount(electionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyEligibleCount, electionID))
}

// Admin key builders

func (kb *KeyBuilder) KeyAdminStats() string {
	return kb.BuildKey(KeyAdminStats)
}
