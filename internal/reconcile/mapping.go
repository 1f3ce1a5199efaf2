package reconcile

import (
	"sort"
	"strings"

	"github.com/padlinkapp/padlink-server/internal/domain"
	domainerrors "github.com/padlinkapp/padlink-server/internal/errors"
	"github.com/padlinkapp/padlink-server/internal/normalize"
)

// authorNames are the selectable author display name mappers.
var authorNames = map[string]func(*domain.User) string{
	"username": (*domain.User).String,
	"display_name": func(u *domain.User) string {
		if name := normalize.DisplayName(u.DisplayName); name != "" {
			return name
		}
		return u.String()
	},
	"email": func(u *domain.User) string {
		if email := strings.TrimSpace(u.Email); email != "" {
			return email
		}
		return u.String()
	},
}

// AuthorNameMapper returns the mapper registered under key. An empty key
// selects "username". Unknown keys are configuration errors.
func AuthorNameMapper(key string) (func(*domain.User) string, error) {
	if key == "" {
		key = "username"
	}
	fn, ok := authorNames[key]
	if !ok {
		return nil, domainerrors.Configurationf("unknown author name mapper %q (want one of %s)",
			key, strings.Join(AuthorNameMappers(), ", "))
	}
	return fn, nil
}

// AuthorNameMappers lists the valid mapper keys.
func AuthorNameMappers() []string {
	keys := make([]string, 0, len(authorNames))
	for k := range authorNames {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
