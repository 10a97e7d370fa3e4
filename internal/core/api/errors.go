package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/searchcond/internal/types"
)

// toStatus maps service errors onto gRPC status codes.
// Auth errors are mapped in the auth package interceptor.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrInvalidRequest):
		code = codes.InvalidArgument
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, types.ErrRuleSetNotFound):
		code = codes.NotFound
	default:
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}
