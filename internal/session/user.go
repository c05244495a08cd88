package session

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status tracks a user's registration progress.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

// User is one messaging-platform user known to the bot. The zero value is
// not valid; users are created through Store.GetOrCreate.
type User struct {
	ID            string
	DisplayName   string
	ReferenceCode string
	RegisteredAt  time.Time
	Accepted      bool
	Status        Status
}

// placeholderName generates a display name for users whose platform profile
// is not available at first contact.
func placeholderName() string {
	return "user-" + uuid.New().String()[:8]
}

// referenceCode builds a human-shareable code of the form
// #<name>-<5-digit-zero-padded-random>.
func referenceCode(displayName string) string {
	name := strings.ToLower(displayName)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	name = strings.Trim(b.String(), "-")
	if name == "" {
		name = "guest"
	}
	return fmt.Sprintf("#%s-%05d", name, rand.IntN(100000))
}
