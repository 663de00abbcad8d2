package convert

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrInvalidUTF8 reports input that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid utf-8 input")

// DecodeError is returned when the HTML bytes cannot be decoded. It is the
// only error Convert returns.
type DecodeError struct {
	// Offset is the byte offset of the first invalid sequence.
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode html: invalid utf-8 sequence at byte %d", e.Offset)
}

// Unwrap lets errors.Is match ErrInvalidUTF8.
func (e *DecodeError) Unwrap() error {
	return ErrInvalidUTF8
}

// Decode validates src as UTF-8 and strips a leading byte order mark.
// Invalid input yields a *DecodeError.
func Decode(src []byte) (string, error) {
	if !utf8.Valid(src) {
		return "", &DecodeError{Offset: firstInvalid(src)}
	}
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(src)
	if err != nil {
		return "", fmt.Errorf("decode html: %w", err)
	}
	return string(out), nil
}

func firstInvalid(src []byte) int {
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(src)
}
