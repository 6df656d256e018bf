package auth

import (
	"errors"
	"regexp"
	"strings"
)

// Identity headers exchanged with the gateway's ForwardAuth call.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

var ErrInvalidOwner = errors.New("invalid owner id")

// Owner ids end up inside store keys and R2 object names, so separators and
// whitespace are refused.
var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9._@+|-]{1,128}$`)

// Identity is an authenticated caller. Owner keys the caller's song store.
type Identity struct {
	Owner string
	Email string
	Name  string
}

// OwnerID normalises raw into a store owner id.
func OwnerID(raw string) (string, error) {
	owner := strings.TrimSpace(raw)
	if !ownerPattern.MatchString(owner) || strings.Trim(owner, ".") == "" {
		return "", ErrInvalidOwner
	}
	return owner, nil
}
