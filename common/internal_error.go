package common

import (
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/kunichan2013/dremio-oss/errors"
	log "github.com/sirupsen/logrus"
)

func LogInternalError(err error) errors.PivotError {
	id, err2 := uuid.NewRandom()
	var errRef string
	if err2 != nil {
		log.Errorf("failed to generate uuid %v", err2)
		errRef = ""
	} else {
		errRef = id.String()
	}
	// The caller only sees the reference, the details go to the log under the same reference
	perr := errors.NewInternalError(errRef)
	log.Errorf("internal error occurred with reference %s\n%+v", errRef, err)
	return perr
}

// RecoverInternalError turns a panic in the calling goroutine into an internal error stored in errp. It must be
// called directly by a defer statement.
func RecoverInternalError(errp *error) {
	r := recover()
	if r == nil {
		return // no panic underway
	}
	log.Errorf("panic occurred %v\n%s", r, debug.Stack())
	*errp = LogInternalError(errors.Errorf("panic: %v", r))
}
