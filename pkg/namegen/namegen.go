// Package namegen mints the human-readable identity that names a single
// sandbox run. The identity is handed to the backend, shown to the user,
// and used as the filename stem for staging artifacts, so it stays within
// [a-z0-9_-].
package namegen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/docker/docker/pkg/namesgenerator"
)

// New returns a fresh identity such as "quirky_halibut-3f2a".
// The random hex suffix keeps identities from colliding across runs even
// when the name generator picks the same base pair.
func New() string {
	suffix := make([]byte, 2)
	rand.Read(suffix)
	return fmt.Sprintf("%s-%s", namesgenerator.GetRandomName(0), hex.EncodeToString(suffix))
}
