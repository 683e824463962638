package doifetch_test

import (
	"testing"

	"github.com/rafguns/doifetch"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := doifetch.Errorf(doifetch.ENOTFOUND, "fulltext for %q not found", "10.1/x")

	assert.Equal(t, doifetch.ENOTFOUND, doifetch.ErrorCode(err))
	assert.Equal(t, "fulltext for \"10.1/x\" not found", doifetch.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, doifetch.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, doifetch.ErrorMessage(nil))
}

func TestEncodeDOI(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "10.1017/S0963926820000012", doifetch.EncodeDOI("10.1017/S0963926820000012"))
	assert.Equal(t, "10.1000/a%20b", doifetch.EncodeDOI("10.1000/a b"))
	assert.Equal(t, "https://doi.org/10.1234/example", doifetch.DOIURL("10.1234/example"))
}
