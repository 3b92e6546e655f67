package eval

import (
	"fmt"

	apperrors "github.com/standardbeagle/tmplctl/internal/errors"
)

func errUnsafe(expr, detail string) *apperrors.EvalError {
	return apperrors.NewEvalError(apperrors.KindUnsafeExpression, expr, detail, nil)
}

func errParseAt(expr string, pos int, msg string) *apperrors.EvalError {
	return apperrors.NewEvalError(apperrors.KindParseError, expr, msg, nil).WithPos(pos)
}

func errVarUndefined(expr, path string) *apperrors.EvalError {
	return apperrors.NewEvalError(apperrors.KindVariableUndefined, expr, "undefined root variable "+path, nil)
}

func errUnknownFunc(expr, name string) *apperrors.EvalError {
	return apperrors.NewEvalError(apperrors.KindUnknownFunction, expr, "unknown function "+name, nil)
}

func errArity(expr, name string, expected, got int) *apperrors.EvalError {
	return apperrors.NewEvalError(apperrors.KindArityMismatch, expr,
		fmt.Sprintf("%s expects %d args, got %d", name, expected, got), nil)
}

func errTypeMismatch(expr, op string, left, right Kind) *apperrors.EvalError {
	return apperrors.NewEvalError(apperrors.KindTypeMismatch, expr,
		fmt.Sprintf("operator %s not defined for %s and %s", op, left, right), nil)
}

func errDivByZero(expr string) *apperrors.EvalError {
	return apperrors.NewEvalError(apperrors.KindDivisionByZero, expr, "division by zero", nil)
}

func errRegex(expr string, err error) *apperrors.EvalError {
	return apperrors.NewEvalError(apperrors.KindRegexError, expr, "invalid regular expression", err)
}
