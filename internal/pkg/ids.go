package pkg

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const maxGameID = 99999999

// GenerateNewSessionID - generates a new unique session (player) id.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateGameID - generates a short numeric game id players can share.
func GenerateGameID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxGameID))
	if err != nil {
		return "", fmt.Errorf("failed to generate game id: %w", err)
	}

	return fmt.Sprintf("%08d", n.Int64()), nil
}
