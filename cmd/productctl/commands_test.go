package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/abgdnv/inventory/internal/product/app"
	productv1 "github.com/abgdnv/inventory/pkg/api/product/v1"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// startServer serves the real product gRPC API over an in-memory listener.
func startServer(t *testing.T) grpc.DialOption {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	grpcServer, _ := app.SetupGrpcServer(app.SetupDependencies(messaging.NewLogPublisher(logger), logger), false)
	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
}

func execute(t *testing.T, dialer grpc.DialOption, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(dialer)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--addr", "passthrough://bufnet"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestProductctl_Lifecycle(t *testing.T) {
	dialer := startServer(t)

	// create
	out, err := execute(t, dialer, "create", "--name", "Keyboard", "--price", "49.5", "--description", "mechanical")
	require.NoError(t, err)
	var created productv1.Product
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Keyboard", created.Name)
	require.NotNil(t, created.Description)
	assert.Equal(t, "mechanical", *created.Description)
	assert.True(t, created.InStock)

	_, err = execute(t, dialer, "create", "--name", "Monitor", "--price", "199", "--in-stock=false")
	require.NoError(t, err)

	// get
	out, err = execute(t, dialer, "get", "1")
	require.NoError(t, err)
	var fetched productv1.Product
	require.NoError(t, json.Unmarshal([]byte(out), &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	// list
	out, err = execute(t, dialer, "list", "--in-stock=false")
	require.NoError(t, err)
	var listed []productv1.Product
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Monitor", listed[0].Name)

	// delete
	out, err = execute(t, dialer, "delete", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Product 1 deleted successfully"}`, out)

	_, err = execute(t, dialer, "get", "1")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestProductctl_Errors(t *testing.T) {
	dialer := startServer(t)

	testCases := []struct {
		name   string
		args   []string
		code   codes.Code
		errMsg string
	}{
		{name: "malformed id", args: []string{"get", "abc"}, errMsg: `invalid product id "abc"`},
		{name: "missing name flag", args: []string{"create", "--price", "1"}, errMsg: `required flag(s) "name" not set`},
		{name: "non-positive price", args: []string{"create", "--name", "X", "--price", "0"}, code: codes.InvalidArgument},
		{name: "limit out of range", args: []string{"list", "--limit", "500"}, code: codes.InvalidArgument},
		{name: "zero id", args: []string{"delete", "0"}, code: codes.InvalidArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			_, err := execute(t, dialer, tc.args...)

			// then
			require.Error(t, err)
			if tc.errMsg != "" {
				assert.Contains(t, err.Error(), tc.errMsg)
			} else {
				assert.Equal(t, tc.code, status.Code(err))
			}
		})
	}
}
