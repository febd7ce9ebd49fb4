package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders_UseDollarPlaceholders(t *testing.T) {
	query, args, err := Select("id").From("rooms").Where(squirrel.Eq{"id": 1}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM rooms WHERE id = $1", query)
	assert.Equal(t, []interface{}{1}, args)

	query, _, err = Update("rooms").Set("active", false).Where(squirrel.Eq{"id": 1}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE rooms SET active = $1 WHERE id = $2", query)

	query, _, err = Insert("rooms").Columns("id", "hotel_id").Values(1, 10).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO rooms (id,hotel_id) VALUES ($1,$2)", query)
}
