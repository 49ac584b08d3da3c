package common

import (
	"testing"

	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/stretchr/testify/require"
)

func TestLogInternalError(t *testing.T) {
	perr := LogInternalError(errors.New("disk on fire"))
	require.Equal(t, errors.InternalError, perr.Code)
	require.NotContains(t, perr.Error(), "disk on fire")
	require.Contains(t, perr.Error(), "PVT0000 - Internal error - reference: ")
}

func panicky() (err error) {
	defer RecoverInternalError(&err)
	var rows []int
	_ = rows[3]
	return nil
}

func calm() (err error) {
	defer RecoverInternalError(&err)
	return errors.New("ordinary failure")
}

func TestRecoverInternalError(t *testing.T) {
	err := panicky()
	require.Error(t, err)
	require.True(t, errors.IsCode(err, errors.InternalError))

	err = calm()
	require.Equal(t, "ordinary failure", err.Error())
}
