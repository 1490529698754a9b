package grpc_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/viralforge/project-tracker/internal/adapters/grpc"
	"github.com/viralforge/project-tracker/internal/application"
	"github.com/viralforge/project-tracker/internal/testutil"
)

func dial(t *testing.T, env *testutil.Env) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	grpcadapter.Register(server, grpcadapter.NewTrackerInternalServer(env.Service))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestValidateToken(t *testing.T) {
	t.Parallel()
	env := testutil.NewEnv(t)
	conn := dial(t, env)
	ctx := context.Background()

	auth, err := env.Service.Register(ctx, application.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "passw0rd!",
	})
	require.NoError(t, err)

	req, err := structpb.NewStruct(map[string]any{"token": auth.Token})
	require.NoError(t, err)
	resp := &structpb.Struct{}
	require.NoError(t, conn.Invoke(ctx, "/tracker.v1.TrackerInternalService/ValidateToken", req, resp))
	assert.True(t, resp.GetFields()["valid"].GetBoolValue())
	assert.Equal(t, auth.UserID.String(), resp.GetFields()["user_id"].GetStringValue())

	bad, err := structpb.NewStruct(map[string]any{"token": "garbage"})
	require.NoError(t, err)
	err = conn.Invoke(ctx, "/tracker.v1.TrackerInternalService/ValidateToken", bad, &structpb.Struct{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	err = conn.Invoke(ctx, "/tracker.v1.TrackerInternalService/ValidateToken", &structpb.Struct{}, &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGetPublicKeys(t *testing.T) {
	t.Parallel()
	env := testutil.NewEnv(t)
	conn := dial(t, env)

	resp := &structpb.Struct{}
	require.NoError(t, conn.Invoke(context.Background(), "/tracker.v1.TrackerInternalService/GetPublicKeys", &emptypb.Empty{}, resp))
	keys := resp.GetFields()["keys"].GetListValue().GetValues()
	require.Len(t, keys, 1)
	assert.Equal(t, "test-key", keys[0].GetStructValue().GetFields()["kid"].GetStringValue())
}
