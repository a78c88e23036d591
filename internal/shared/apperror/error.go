package apperror

import "fmt"

// AppError adalah error domain yang sudah tahu kode dan status HTTP-nya,
// jadi handler tinggal memetakan lewat ToHTTP tanpa switch per error.
type AppError struct {
	Code       string // stable machine-readable code, muncul di field error.code
	Message    string // pesan untuk klien
	HTTPStatus int
	Err        error // underlying error, optional
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap membuat errors.Is/As tembus ke error aslinya.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New membuat sentinel error; dipakai di paket errors tiap fitur.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap membungkus error lain sambil menempelkan kode dan status.
// Nil in, nil out.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}
