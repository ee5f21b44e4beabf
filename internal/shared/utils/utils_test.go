package utils

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereBuilder(t *testing.T) {
	var w WhereBuilder
	assert.Equal(t, "", w.SQL())

	w.Add("n.status = ?", "ongoing")
	w.Add("(n.title ILIKE ? OR n.description ILIKE ?)", "%x%", "%x%")
	limit := w.Arg(20)

	assert.Equal(t, "WHERE n.status = $1 AND (n.title ILIKE $2 OR n.description ILIKE $3)", w.SQL())
	assert.Equal(t, "$4", limit)
	assert.Equal(t, []any{"ongoing", "%x%", "%x%", 20}, w.Args())
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%night%", ContainsPattern("night"))
	assert.Equal(t, `%100\%%`, ContainsPattern("100%"))
	assert.Equal(t, `%a\_b%`, ContainsPattern("a_b"))
	assert.Equal(t, `%c:\\x%`, ContainsPattern(`c:\x`))
}

func TestNormalizePage(t *testing.T) {
	page, limit, offset := NormalizePage(0, 0)
	assert.Equal(t, []int{1, DefaultPageSize, 0}, []int{page, limit, offset})

	page, limit, offset = NormalizePage(3, 500)
	assert.Equal(t, []int{3, MaxPageSize, 2 * MaxPageSize}, []int{page, limit, offset})

	page, limit, offset = NormalizePage(2, 5)
	assert.Equal(t, []int{2, 5, 5}, []int{page, limit, offset})
}

func TestUnmarshalTask(t *testing.T) {
	var p struct {
		Days int `json:"days"`
	}
	require.NoError(t, UnmarshalTask(asynq.NewTask("x", []byte(`{"days":7}`)), &p))
	assert.Equal(t, 7, p.Days)

	require.NoError(t, UnmarshalTask(asynq.NewTask("x", nil), &p))
	assert.Error(t, UnmarshalTask(asynq.NewTask("x", []byte(`{`)), &p))
}
