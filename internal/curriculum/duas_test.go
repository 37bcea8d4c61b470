package curriculum

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuasStatusRoundTrip(t *testing.T) {
	for _, book := range DuasBooks() {
		for level := 1; level <= DuasLevelsFor(book); level++ {
			original := DuasStatus{Book: book, Level: level}
			decoded, err := ParseDuasStatus(original.Encode())
			require.NoError(t, err, "%s level %d", book, level)
			assert.Equal(t, original, decoded)
		}
	}

	completed := DuasStatus{Completed: true}
	decoded, err := ParseDuasStatus(completed.Encode())
	require.NoError(t, err)
	assert.Equal(t, completed, decoded)
}

func TestDuasStatusCompletionFreezesBookAndLevel(t *testing.T) {
	d := DuasStatus{Book: DuasBook1, Level: 7, Completed: true}
	decoded, err := ParseDuasStatus(d.Encode())
	require.NoError(t, err)
	assert.True(t, decoded.Completed)
	assert.Empty(t, decoded.Book)
	assert.Zero(t, decoded.Level)
}

func TestParseDuasStatusEmpty(t *testing.T) {
	d, err := ParseDuasStatus("")
	require.NoError(t, err)
	assert.False(t, d.Set())
	assert.False(t, d.Valid())
}

func TestParseDuasStatusRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{"Book 1", "Book 1|x", "Nope|3", fmt.Sprintf("%s|%d", DuasBook2, DuasLevelsFor(DuasBook2)+1)} {
		_, err := ParseDuasStatus(encoded)
		assert.Error(t, err, "encoded %q", encoded)
	}
}

func TestDuasCompleted(t *testing.T) {
	assert.True(t, DuasCompleted("completed"))
	assert.False(t, DuasCompleted(""))
	assert.False(t, DuasCompleted("Book 1|3"))
	assert.False(t, DuasCompleted("not a status"))
}
