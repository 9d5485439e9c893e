package warehouse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maternoscope/pipeline/internal/models"
)

func TestInsertPostsSQL(t *testing.T) {
	sql := InsertPostsSQL("reddit_posts", false, 2)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO reddit_posts ("))
	for _, col := range models.PostColumns {
		assert.Contains(t, sql, strings.ToUpper(col))
	}
	assert.NotContains(t, sql, "TIME_FILTER")

	// One placeholder per column, one tuple per row.
	assert.Equal(t, 2*len(models.PostColumns), strings.Count(sql, "?"))
	assert.Equal(t, 2, strings.Count(sql, "("+strings.TrimSuffix(strings.Repeat("?,", len(models.PostColumns)), ",")+")"))
}

func TestInsertPostsSQLWithTimeFilter(t *testing.T) {
	sql := InsertPostsSQL("top_reddit_posts", true, 3)

	assert.Contains(t, sql, "TIME_FILTER")
	assert.Equal(t, 3*(len(models.PostColumns)+1), strings.Count(sql, "?"))
}
