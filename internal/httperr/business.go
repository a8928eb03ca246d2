package httperr

import "errors"

// BusinessError is an expected rule violation identified by a stable code.
// Handlers map codes to HTTP statuses.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	c, ok := BusinessCode(err)
	return ok && c == code
}

// BusinessCode returns the code of the first BusinessError in err's chain.
func BusinessCode(err error) (string, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}
