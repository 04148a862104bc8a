package utils

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UniqueIDService provides short human-pasteable code generation. Entity
// primary keys are uuids; these codes are for invitation links only.
type UniqueIDService struct{}

// NewUniqueIDService creates a new UniqueIDService
func NewUniqueIDService() *UniqueIDService {
	return &UniqueIDService{}
}

// GenerateInvitationCode creates a code with the following pattern:
//   - First character is the provided prefix (e.g., 'd' for donor)
//   - Followed by 2 random digits [0-9]
//   - Followed by 9 random alphanumeric [0-9a-z]
//
// Example output with prefix 'd': D12ABC345XY
func (s *UniqueIDService) GenerateInvitationCode(prefix string) (string, error) {
	digits := "0123456789"
	alnum := "0123456789abcdefghijklmnopqrstuvwxyz"

	twoDigits, err := gonanoid.Generate(digits, 2)
	if err != nil {
		return "", fmt.Errorf("failed to generate two digits: %w", err)
	}

	nineAlnum, err := gonanoid.Generate(alnum, 9)
	if err != nil {
		return "", fmt.Errorf("failed to generate alphanumeric part: %w", err)
	}

	return strings.ToUpper(prefix + twoDigits + nineAlnum), nil
}

// Global instance of UniqueIDService
var UniqueIDSvc = NewUniqueIDService()

func GenerateInvitationCode(prefix string) (string, error) {
	return UniqueIDSvc.GenerateInvitationCode(prefix)
}
