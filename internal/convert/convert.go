// Package convert translates non-negative integers between the radixes the
// app supports.
package convert

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/atinyakov/basetutor/internal/models"
)

// ErrMalformed reports input that is not a number in the given base. Its
// message is shown to the user as is.
var ErrMalformed = errors.New("invalid number for the selected base")

// ErrUnsupportedBase reports a base outside models.SupportedBases.
var ErrUnsupportedBase = errors.New("unsupported base")

// Convert parses value in base from and formats it in base to. Hex output is
// lowercase; a leading "0x", "0o" or "0b" prefix matching from is accepted.
func Convert(value string, from, to int) (string, error) {
	if !models.ValidBase(from) || !models.ValidBase(to) {
		return "", fmt.Errorf("%w: %d -> %d", ErrUnsupportedBase, from, to)
	}

	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimPrefix(v, prefix(from))
	if v == "" || strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+") {
		return "", ErrMalformed
	}

	n, ok := new(big.Int).SetString(v, from)
	if !ok {
		return "", ErrMalformed
	}
	return n.Text(to), nil
}

func prefix(base int) string {
	switch base {
	case 2:
		return "0b"
	case 8:
		return "0o"
	case 16:
		return "0x"
	}
	return ""
}
