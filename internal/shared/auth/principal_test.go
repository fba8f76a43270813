package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	member := Principal{UserID: "u-1", Username: "alice"}
	staff := Principal{UserID: "u-2", Username: "root", Staff: true}

	require.ErrorIs(t, Authorize(Principal{}, ModeratePets), ErrUnauthenticated)
	require.ErrorIs(t, Authorize(member, AdoptOnBehalf), ErrForbidden)
	require.NoError(t, Authorize(staff, AdoptOnBehalf))

	assert.True(t, member.Can(Capability("pets.create")))
	assert.False(t, Principal{}.Can(Capability("pets.create")))
}
