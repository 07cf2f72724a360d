package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/db/dbtest"
)

func TestGet(t *testing.T) {
	db := dbtest.Open(t)

	_, err := Get(nil, "x")
	assert.ErrorIs(t, err, ErrDBNil)

	_, err = Get(db, "")
	assert.ErrorIs(t, err, ErrSettingNameEmpty)

	_, err = Get(db, "missing")
	assert.ErrorIs(t, err, ErrSettingNotFound)

	_, err = Set(db, "greeting", []byte(`"hello"`))
	require.NoError(t, err)

	s, err := Get(db, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"hello"`), s.Value)
}

func TestSetUpserts(t *testing.T) {
	db := dbtest.Open(t)

	first, err := Set(db, "key", []byte("1"))
	require.NoError(t, err)

	second, err := Set(db, "key", []byte("2"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []byte("2"), second.Value)

	all, err := GetAll(db)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteByName(t *testing.T) {
	db := dbtest.Open(t)

	assert.ErrorIs(t, DeleteByName(db, "missing"), ErrSettingNotFound)

	_, err := Set(db, "key", []byte("1"))
	require.NoError(t, err)
	require.NoError(t, DeleteByName(db, "key"))

	_, err = Get(db, "key")
	assert.ErrorIs(t, err, ErrSettingNotFound)
}

func TestJSONHelpers(t *testing.T) {
	db := dbtest.Open(t)

	type limits struct {
		Max int `json:"max"`
	}

	created, err := SeedJSON(db, "limits", limits{Max: 3})
	require.NoError(t, err)
	assert.True(t, created)

	// an existing value is never overwritten by a seed
	created, err = SeedJSON(db, "limits", limits{Max: 9})
	require.NoError(t, err)
	assert.False(t, created)

	var got limits
	require.NoError(t, GetJSON(db, "limits", &got))
	assert.Equal(t, 3, got.Max)

	require.NoError(t, SetJSON(db, "limits", limits{Max: 5}))
	require.NoError(t, GetJSON(db, "limits", &got))
	assert.Equal(t, 5, got.Max)

	_, err = Set(db, "broken", []byte("{"))
	require.NoError(t, err)
	assert.Error(t, GetJSON(db, "broken", &got))
}
