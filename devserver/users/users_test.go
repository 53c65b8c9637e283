package users_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lakehouselib/lakehouse/devserver/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewStore_Inline(t *testing.T) {
	t.Parallel()

	store, err := users.NewStore(users.Config{Inline: []users.User{
		{Email: "User1@gmail.com", Password: "secret"},
		{Email: "admin@example.com", Password: "pw", Role: "admin", ID: "u-admin"},
		{Email: "", Password: "skipped"},
		{Email: "nopass@example.com"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	u, err := store.Authenticate("user1@gmail.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, users.DefaultRole, u.Role)
	assert.NotEmpty(t, u.ID)

	again, err := users.NewStore(users.Config{Inline: []users.User{{Email: "user1@gmail.com", Password: "x"}}})
	require.NoError(t, err)
	same, err := again.Lookup("USER1@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, same.ID, "generated ids are stable per email")

	admin, err := store.Authenticate("admin@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-admin", admin.ID)
	assert.Equal(t, "admin", admin.Role)
}

func TestStore_AuthenticateFailures(t *testing.T) {
	t.Parallel()

	store, err := users.NewStore(users.Config{Inline: []users.User{{Email: "a@b.c", Password: "right"}}})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "a@b.c", password: "wrong"},
		{name: "unknown email", email: "x@b.c", password: "right"},
		{name: "empty password", email: "a@b.c", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Authenticate(tt.email, tt.password)
			assert.ErrorIs(t, err, users.ErrInvalidCredentials)
		})
	}
}

func TestNewStore_FileOverridesInline(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, `[{"email": "a@b.c", "password": "from-file", "role": "admin"}]`)

	store, err := users.NewStore(users.Config{
		Inline: []users.User{{Email: "a@b.c", Password: "inline"}},
		File:   path,
	})
	require.NoError(t, err)

	_, err = store.Authenticate("a@b.c", "inline")
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)

	u, err := store.Authenticate("a@b.c", "from-file")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
}

func TestLoadUsersFromFile_Errors(t *testing.T) {
	t.Parallel()

	_, err := users.LoadUsersFromFile("/nonexistent/users.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read users file")

	_, err = users.LoadUsersFromFile(writeTestFile(t, `{"email": "a@b.c"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse users file")

	_, err = users.NewStore(users.Config{File: "/nonexistent/users.json"})
	assert.Error(t, err)
}
