package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	t.Run("reads header and numbered data lines", func(t *testing.T) {
		input := "Video name,Video post date,Creator username,GMV\n" +
			"Cool Clip,2024-01-05,@bob,1234.50\n" +
			"Second Clip,2024-01-06,@alice,99\n"

		header, lines, err := ReadRows(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, []string{"Video name", "Video post date", "Creator username", "GMV"}, header)
		require.Len(t, lines, 2)
		assert.Equal(t, 2, lines[0].Number)
		assert.Equal(t, []string{"Cool Clip", "2024-01-05", "@bob", "1234.50"}, lines[0].Fields)
		assert.Equal(t, 3, lines[1].Number)
	})

	t.Run("drops blank lines", func(t *testing.T) {
		input := "name,date,creator,gmv\n\nClip,2024-01-05,bob,10\n\n , , , \n"

		_, lines, err := ReadRows(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, []string{"Clip", "2024-01-05", "bob", "10"}, lines[0].Fields)
	})

	t.Run("trims field whitespace", func(t *testing.T) {
		input := "name,date,creator,gmv\n Clip , 2024-01-05 , bob , 10 \n"

		_, lines, err := ReadRows(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, []string{"Clip", "2024-01-05", "bob", "10"}, lines[0].Fields)
	})

	t.Run("quoted fields keep embedded commas", func(t *testing.T) {
		input := "name,date,creator,gmv\n\"Clip, The Sequel\",2024-01-05,bob,10\n"

		_, lines, err := ReadRows(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, "Clip, The Sequel", lines[0].Fields[0])
	})

	t.Run("allows ragged rows", func(t *testing.T) {
		input := "name,date,creator,gmv\nClip,2024-01-05\n"

		_, lines, err := ReadRows(strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, lines[0].Fields, 2)
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := ReadRows(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrInsufficientRows)
	})

	t.Run("header only", func(t *testing.T) {
		_, _, err := ReadRows(strings.NewReader("name,date,creator,gmv\n"))
		assert.ErrorIs(t, err, ErrInsufficientRows)
	})

	t.Run("header plus blank lines only", func(t *testing.T) {
		_, _, err := ReadRows(strings.NewReader("name,date,creator,gmv\n\n\n"))
		assert.ErrorIs(t, err, ErrInsufficientRows)
	})
}
