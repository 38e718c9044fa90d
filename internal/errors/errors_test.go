package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"gocompare/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestGetCode_FromDomainSentinels(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{core.NewInsufficientDataError("t-test", 2, 1), CodeInsufficientData},
		{core.NewInvalidSampleError(0, 0), CodeInvalidInput},
		{core.NewConfigError("alpha", "must be in (0,1)"), CodeConfigInvalid},
		{fmt.Errorf("wrap: %w", core.ErrUnknownMethod), CodeConfigInvalid},
		{core.NewColumnNotFoundError("Click"), CodeNotFound},
		{fmt.Errorf("%w: p-value 1.5 outside [0,1]", core.ErrInvariant), CodeInternalError},
		{stderrors.New("boom"), CodeInternalError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, GetCode(tt.err), tt.err.Error())
	}
	assert.Equal(t, "", GetCode(nil))
}

func TestWrap_KeepsCodeAndChain(t *testing.T) {
	base := core.NewInsufficientDataError("normality test", 3, 2)
	wrapped := Wrapf(base, "metric %q", "Conversion")

	assert.Equal(t, CodeInsufficientData, GetCode(wrapped))
	assert.True(t, core.IsInsufficientDataError(wrapped))
	assert.Contains(t, wrapped.Error(), `metric "Conversion"`)

	outer := Wrap(DataSourceError("control.csv", stderrors.New("eof")), "load")
	assert.Equal(t, CodeDataSource, GetCode(outer))
	assert.Nil(t, Wrap(nil, "x"))
}

func TestFromDomain(t *testing.T) {
	err := FromDomain(core.NewConfigError("alpha", "bad"))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodeConfigInvalid, GetCode(err))

	app := InvalidInput("x")
	assert.Same(t, app, FromDomain(app))
	assert.Nil(t, FromDomain(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(CodeInvalidInput))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(CodeInsufficientData))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeConfigInvalid))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeBadRequest))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(CodeDataSource))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(CodeDatabaseError))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeInternalError))
}

func TestConstructors_KeepCause(t *testing.T) {
	cause := stderrors.New("connection refused")

	dbErr := DatabaseError("query samples", cause)
	assert.Equal(t, CodeDatabaseError, GetCode(dbErr))
	assert.ErrorIs(t, dbErr, cause)
	assert.Equal(t, "query samples: connection refused", dbErr.Error())

	internalErr := InternalError("request failed", cause)
	assert.Equal(t, CodeInternalError, GetCode(internalErr))
	assert.ErrorIs(t, internalErr, cause)

	notFound := NotFound(`group "holdout"`)
	assert.Equal(t, CodeNotFound, GetCode(notFound))
	assert.Equal(t, `group "holdout" not found`, notFound.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(GetCode(Wrap(notFound, "metric \"Click\""))))
}
