package transport

import (
	"context"
	"errors"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

// TranslateContextErr maps context.Canceled and context.DeadlineExceeded
// to a Cancelled transport error. Any other error (including nil) is
// returned unchanged.
func TranslateContextErr(url string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTransportError(apperrors.KindCancelled, url, err)
	}
	return err
}
