package prodcrawl_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fwojciec/prodcrawl"
)

func TestErrorCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", prodcrawl.ErrorCode(nil))
	assert.Equal(t, prodcrawl.ECONFIG, prodcrawl.ErrorCode(prodcrawl.Errorf(prodcrawl.ECONFIG, "bad config")))
	assert.Equal(t, prodcrawl.EINTERNAL, prodcrawl.ErrorCode(errors.New("plain error")))

	wrapped := fmt.Errorf("context: %w", prodcrawl.Errorf(prodcrawl.EFETCH, "timeout"))
	assert.Equal(t, prodcrawl.EFETCH, prodcrawl.ErrorCode(wrapped), "codes survive wrapping")
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", prodcrawl.ErrorMessage(nil))
	assert.Equal(t, "bad config", prodcrawl.ErrorMessage(prodcrawl.Errorf(prodcrawl.ECONFIG, "bad config")))
	assert.Equal(t, "An internal error has occurred.", prodcrawl.ErrorMessage(errors.New("plain error")))
}

func TestErrorf_formats_message(t *testing.T) {
	t.Parallel()

	err := prodcrawl.Errorf(prodcrawl.EINVALID, "bad value %d", 42)
	assert.Equal(t, "bad value 42", err.Message)
	assert.Contains(t, err.Error(), "code=invalid")
}
