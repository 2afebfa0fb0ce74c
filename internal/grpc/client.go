package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls SimulationService over any client connection
type Client struct {
	cc gogrpc.ClientConnInterface
}

func NewClient(cc gogrpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in any, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func request(fields map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(fields)
}

func (c *Client) StartRun(ctx context.Context, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StartRun", &emptypb.Empty{}, opts...)
}

func (c *Client) GetRun(ctx context.Context, runID string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	in, err := request(map[string]any{"runId": runID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "GetRun", in, opts...)
}

func (c *Client) Select(ctx context.Context, runID, teamID, playerID string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	in, err := request(map[string]any{"runId": runID, "teamId": teamID, "playerId": playerID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "Select", in, opts...)
}

func (c *Client) Skip(ctx context.Context, runID, teamID string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	in, err := request(map[string]any{"runId": runID, "teamId": teamID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "Skip", in, opts...)
}

func (c *Client) GetResult(ctx context.Context, runID string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	in, err := request(map[string]any{"runId": runID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "GetResult", in, opts...)
}

// EventStream receives events from StreamEvents
type EventStream struct {
	stream gogrpc.ClientStream
}

// Recv blocks for the next event. io.EOF means the server closed the stream.
func (s *EventStream) Recv() (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := s.stream.RecvMsg(out); err != nil {
		return nil, err
	}
	return out, nil
}

// StreamEvents opens an event stream, optionally narrowed to one run
func (c *Client) StreamEvents(ctx context.Context, runID string, opts ...gogrpc.CallOption) (*EventStream, error) {
	desc := &ServiceDesc.Streams[0]
	stream, err := c.cc.NewStream(ctx, desc, "/"+ServiceName+"/"+desc.StreamName, opts...)
	if err != nil {
		return nil, err
	}
	in, err := request(map[string]any{"runId": runID})
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &EventStream{stream: stream}, nil
}
