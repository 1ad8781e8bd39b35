package interceptors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestUnaryClientTimeoutInterceptor(t *testing.T) {
	tests := []struct {
		name     string
		delay    time.Duration
		timeout  time.Duration
		wantCode codes.Code
	}{
		{name: "slow server exceeds deadline", delay: 200 * time.Millisecond, timeout: 50 * time.Millisecond, wantCode: codes.DeadlineExceeded},
		{name: "fast server completes", delay: 0, timeout: time.Second, wantCode: codes.OK},
		{name: "zero timeout leaves call unbounded", delay: 50 * time.Millisecond, timeout: 0, wantCode: codes.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			client, service := setupTestEnvironment(t, UnaryClientTimeoutInterceptor(tt.timeout))
			service.delay = tt.delay

			// when
			_, err := client.GetProduct(context.Background(), wrapperspb.Int64(1))

			// then
			require.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}
