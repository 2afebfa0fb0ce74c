package fuzz

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/dal"
	grpcserver "github.com/Billy-Davies-2/baseball-draft-sim/internal/grpc"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/pubsub"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/simulation"
)

func newGRPCServer(t *testing.T) (*grpcserver.Server, string) {
	t.Helper()
	store := dal.NewMemoryDAL()
	ps := pubsub.New()
	server := grpcserver.NewServer(simulation.NewService(store, simulation.WithPublisher(ps)), ps)

	view, err := server.StartRun(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatal(err)
	}
	return server, view.GetFields()["runId"].GetStringValue()
}

// FuzzGRPCSelect fuzzes the gRPC Select endpoint
func FuzzGRPCSelect(f *testing.F) {
	f.Add("", "1", true)
	f.Add("invalid", "999", false)
	f.Add("", "", true)

	f.Fuzz(func(t *testing.T, teamID, playerID string, sameRun bool) {
		server, runID := newGRPCServer(t)
		if !sameRun {
			runID = teamID + playerID
		}

		req, err := structpb.NewStruct(map[string]any{"runId": runID, "teamId": teamID, "playerId": playerID})
		if err != nil {
			// not valid UTF-8
			return
		}
		_, err = server.Select(context.Background(), req)
		if status.Code(err) == codes.Internal {
			t.Fatalf("internal error for team=%q player=%q: %v", teamID, playerID, err)
		}
	})
}

// FuzzGRPCSkip fuzzes the gRPC Skip endpoint with arbitrary field types
func FuzzGRPCSkip(f *testing.F) {
	f.Add("teamId", "x")
	f.Add("runId", "")
	f.Add("", "")

	f.Fuzz(func(t *testing.T, key, value string) {
		server, runID := newGRPCServer(t)

		req, err := structpb.NewStruct(map[string]any{"runId": runID, key: value})
		if err != nil {
			return
		}
		_, err = server.Skip(context.Background(), req)
		if status.Code(err) == codes.Internal {
			t.Fatalf("internal error for %q=%q: %v", key, value, err)
		}
	})
}

// FuzzGRPCGetResult fuzzes run lookups
func FuzzGRPCGetResult(f *testing.F) {
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("")
	f.Add("../../etc/passwd")

	f.Fuzz(func(t *testing.T, runID string) {
		server, _ := newGRPCServer(t)

		req, err := structpb.NewStruct(map[string]any{"runId": runID})
		if err != nil {
			return
		}
		_, err = server.GetResult(context.Background(), req)
		if status.Code(err) == codes.Internal {
			t.Fatalf("internal error for %q: %v", runID, err)
		}
	})
}
