package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

func TestTranslateContextErr_MapsCancelledAndDeadline(t *testing.T) {
	for _, err := range []error{context.Canceled, context.DeadlineExceeded} {
		translated := TranslateContextErr("https://example.test/tmpl", err)
		var te *apperrors.TransportError
		require := assert.New(t)
		require.ErrorAs(translated, &te)
		require.Equal(apperrors.KindCancelled, te.Kind)
	}
}

func TestTranslateContextErr_PassesThroughOtherErrors(t *testing.T) {
	other := errors.New("boom")
	assert.Equal(t, other, TranslateContextErr("url", other))
}

func TestTranslateContextErr_NilIsNil(t *testing.T) {
	assert.NoError(t, TranslateContextErr("url", nil))
}
