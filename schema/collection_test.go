package schema

import (
	"testing"

	"huntboard/models"

	"github.com/stretchr/testify/assert"
)

func TestCollectionAccess(t *testing.T) {
	col := models.Collection{
		ID:         "c1",
		OwnerID:    "owner",
		SharedWith: []string{"friend"},
	}

	assert.True(t, isOwner(col, "owner"))
	assert.False(t, isOwner(col, "friend"))

	assert.True(t, canView(col, "owner"))
	assert.True(t, canView(col, "friend"))
	assert.False(t, canView(col, "stranger"))
}

func TestScreenNewMembers(t *testing.T) {
	alice := "64f000000000000000000001"
	bob := "64f000000000000000000002"

	assert.NoError(t, screenNewMembers([]string{alice, bob}, nil))

	err := screenNewMembers([]string{alice, "not-an-id"}, nil)
	assert.EqualError(t, err, "User id is invalid")

	err = screenNewMembers([]string{bob}, []string{bob})
	assert.EqualError(t, err, "User is already added to this collection")

	// the batch is also screened against itself
	err = screenNewMembers([]string{alice, bob, alice}, nil)
	assert.EqualError(t, err, "User is already added to this collection")
}

func TestRequireAllOwned(t *testing.T) {
	assert.NoError(t, requireAllOwned(3, 3))
	assert.NoError(t, requireAllOwned(0, 0))

	// one foreign application rejects the whole batch
	err := requireAllOwned(2, 3)
	assert.EqualError(t, err, "One or more applications are not owned by the current user.")
}

func TestExcluding(t *testing.T) {
	got := excluding([]string{"a", "b", "c"}, []string{"b"})
	assert.Equal(t, []string{"a", "c"}, got)

	assert.Empty(t, excluding([]string{"a"}, []string{"a"}))
	assert.Equal(t, []string{"a"}, excluding([]string{"a"}, nil))
	assert.Empty(t, excluding(nil, []string{"a"}))
}
