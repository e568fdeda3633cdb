package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionError(t *testing.T) {
	err := NewOptionError("FileName", "gen.txt", "must end in .go")
	assert.EqualError(t, err, "tabulagen: option FileName=gen.txt: must end in .go")

	err = NewOptionError("Header", nil, "cannot be empty")
	assert.EqualError(t, err, "tabulagen: option Header: cannot be empty")
	assert.ErrorIs(t, fmt.Errorf("apply: %w", err), ErrInvalidOption)
	assert.True(t, IsOptionError(err))
	assert.False(t, IsOptionError(errors.New("other")))
	assert.False(t, IsGenerationError(err))
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewGenerationError("example.com/movies", "tabula_gen.go", "cannot write file", cause)
	assert.EqualError(t, err, "tabulagen: example.com/movies (tabula_gen.go): cannot write file: disk full")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.True(t, IsGenerationError(fmt.Errorf("run: %w", err)))

	err = NewGenerationError("", "", "", cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.EqualError(t, err, "tabulagen: <unknown package>: disk full")
}
