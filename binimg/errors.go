package binimg

import "errors"

// Sentinel errors shared across the library. Wrap them with fmt.Errorf and
// %w so callers can test with errors.Is.
var (
	ErrNotForged      = errors.New("image is not forged")
	ErrNotBinary      = errors.New("image is not binary")
	ErrNotScalar      = errors.New("image is not scalar")
	ErrSizesDontMatch = errors.New("image sizes do not match")
	ErrDimensionality = errors.New("dimensionality not supported")

	ErrParameterOutOfRange = errors.New("parameter value out of range")
	ErrInvalidFlag         = errors.New("invalid flag")
)

// CheckBinary verifies that the image is a forged scalar binary image.
func CheckBinary(im *Image) error {
	if !im.IsForged() {
		return ErrNotForged
	}
	if !im.IsScalar() {
		return ErrNotScalar
	}
	if !im.IsBinary() {
		return ErrNotBinary
	}
	return nil
}
