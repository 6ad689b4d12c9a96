package coldata

import (
	"errors"
	"net"

	"github.com/zeebo/errs"
)

var (
	// ProtocolError marks framing the peer sent that does not match what
	// the column type allows, such as an impossible field length.
	ProtocolError = errs.Class("protocol")

	// StreamError marks failures of the underlying byte stream: premature
	// end of data, malformed packet headers, or transport errors.
	StreamError = errs.Class("stream")

	// ScanError marks values that cannot be stored in the scan target.
	ScanError = errs.Class("scan")
)

// IsProtocolError reports whether err, or any error it wraps, is a ProtocolError.
func IsProtocolError(err error) bool {
	return ProtocolError.Has(err)
}

// IsStreamError reports whether err, or any error it wraps, is a StreamError.
func IsStreamError(err error) bool {
	return StreamError.Has(err)
}

// IsRetryable reports whether repeating the read could succeed. Protocol
// errors never are; a stream error is only when the transport timed out.
func IsRetryable(err error) bool {
	if err == nil || IsProtocolError(err) {
		return false
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
