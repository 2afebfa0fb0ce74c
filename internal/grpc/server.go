package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/pubsub"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/simulation"
)

const replayLimit = 50

// Server implements the gRPC SimulationService
type Server struct {
	sim    *simulation.Service
	pubsub *pubsub.PubSub
}

// NewServer creates a new gRPC server
func NewServer(sim *simulation.Service, ps *pubsub.PubSub) *Server {
	return &Server{
		sim:    sim,
		pubsub: ps,
	}
}

// Register adds the simulation service and the standard health service to gs
func Register(gs *gogrpc.Server, srv *Server) *health.Server {
	gs.RegisterService(&ServiceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}

// StartRun opens a new run and returns its first view
func (s *Server) StartRun(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	logger.Debug("gRPC: Starting simulation")
	runID, _, err := s.sim.Start(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return s.view(runID)
}

// GetRun returns the current view of a run
func (s *Server) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID, err := requireField(req, "runId")
	if err != nil {
		return nil, err
	}
	return s.view(runID)
}

// Select places a bid or a pick
func (s *Server) Select(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID, err := requireField(req, "runId")
	if err != nil {
		return nil, err
	}
	playerID, err := requireField(req, "playerId")
	if err != nil {
		return nil, err
	}
	teamID := field(req, "teamId")

	logger.Info("gRPC: Select", "run_id", runID, "team_id", teamID, "player_id", playerID)
	if _, err := s.sim.Select(ctx, runID, teamID, playerID); err != nil {
		return nil, toStatus(err)
	}
	return s.view(runID)
}

// Skip ends the acting team's draft
func (s *Server) Skip(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID, err := requireField(req, "runId")
	if err != nil {
		return nil, err
	}
	teamID := field(req, "teamId")

	logger.Info("gRPC: Skip", "run_id", runID, "team_id", teamID)
	if _, err := s.sim.Skip(ctx, runID, teamID); err != nil {
		return nil, toStatus(err)
	}
	return s.view(runID)
}

// GetResult returns the final boards of a run
func (s *Server) GetResult(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	runID, err := requireField(req, "runId")
	if err != nil {
		return nil, err
	}
	result, err := s.sim.Result(runID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(result)
}

// StreamEvents streams events to clients. A runId narrows the stream to one
// run and replays its recent history first.
func (s *Server) StreamEvents(req *structpb.Struct, stream gogrpc.ServerStream) error {
	runID := field(req, "runId")
	logger.Debug("gRPC: New client connected to event stream", "run_id", runID)

	eventChan := s.pubsub.Subscribe()
	defer s.pubsub.Unsubscribe(eventChan)

	send := func(event pubsub.Event) error {
		msg, err := toStruct(event)
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		if err := stream.SendMsg(msg); err != nil {
			logger.Error("gRPC: Failed to send event to stream", "error", err)
			return err
		}
		return nil
	}

	if runID != "" {
		for _, event := range s.pubsub.Recent(runID, replayLimit) {
			if err := send(event); err != nil {
				return err
			}
		}
	}

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return nil
			}
			if runID != "" && event.RunID != runID {
				continue
			}
			if err := send(event); err != nil {
				return err
			}
		case <-stream.Context().Done():
			logger.Debug("gRPC: Client disconnected from event stream")
			return nil
		}
	}
}

func (s *Server) view(runID string) (*structpb.Struct, error) {
	v, err := s.sim.View(runID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(v)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, simulation.ErrRunNotFound), errors.Is(err, simulation.ErrPlayerNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, simulation.ErrWrongTurn),
		errors.Is(err, simulation.ErrPlayerUnavailable),
		errors.Is(err, simulation.ErrSkipFirstRound),
		errors.Is(err, simulation.ErrDraftComplete),
		errors.Is(err, simulation.ErrNoTeams):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		logger.Error("gRPC: Simulation request failed", "error", err)
		return status.Error(codes.Internal, err.Error())
	}
}

func field(req *structpb.Struct, key string) string {
	if req == nil {
		return ""
	}
	v, ok := req.GetFields()[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

func requireField(req *structpb.Struct, key string) (string, error) {
	v := field(req, key)
	if v == "" {
		return "", status.Error(codes.InvalidArgument, fmt.Sprintf("%s is required", key))
	}
	return v, nil
}

// toStruct round-trips v through JSON so the struct tags shape the message
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return structpb.NewStruct(payload)
}
