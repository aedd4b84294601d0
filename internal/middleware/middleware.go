package middleware

import (
	"fmt"
	"time"

	"github.com/mstvb/forge/internal/logging"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunE is the signature of a cobra command body.
type RunE func(cmd *cobra.Command, args []string) error

type Middleware func(RunE) RunE

// Chain wraps h so that the first middleware runs outermost.
func Chain(h RunE, middlewares ...Middleware) RunE {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// InvocationID tags the command context with a fresh UUID.
func InvocationID(next RunE) RunE {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.ContextWithInvocationID(cmd.Context(), uuid.New().String())
		cmd.SetContext(ctx)
		return next(cmd, args)
	}
}

func Logger(logger *logging.Logger) Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			err := next(cmd, args)

			fields := []zap.Field{
				zap.String("command", cmd.Name()),
				zap.Strings("args", args),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			logger.WithInvocationID(cmd.Context()).Debug("command completed", fields...)
			return err
		}
	}
}

// Recover turns a panic in the command body into an error.
func Recover(logger *logging.Logger) Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithInvocationID(cmd.Context()).Error("panic recovered",
						zap.String("command", cmd.Name()),
						zap.Any("error", r),
					)
					err = fmt.Errorf("internal error in %s: %v", cmd.Name(), r)
				}
			}()
			return next(cmd, args)
		}
	}
}
