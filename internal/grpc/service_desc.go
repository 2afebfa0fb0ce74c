package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "draftsim.v1.SimulationService"

// SimulationServer is the server API for the simulation service.
// Requests and replies are google.protobuf.Struct messages keyed like the HTTP JSON.
type SimulationServer interface {
	StartRun(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Select(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Skip(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetResult(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StreamEvents(*structpb.Struct, gogrpc.ServerStream) error
}

var _ SimulationServer = (*Server)(nil)

// unaryHandler adapts a typed server method to a grpc.MethodDesc handler
func unaryHandler[Req proto.Message](method string, newReq func() Req, call func(SimulationServer, context.Context, Req) (*structpb.Struct, error)) gogrpc.MethodDesc {
	return gogrpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SimulationServer), ctx, in)
			}
			info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SimulationServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }

// ServiceDesc describes SimulationService for grpc.Server.RegisterService
var ServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulationServer)(nil),
	Methods: []gogrpc.MethodDesc{
		unaryHandler("StartRun", func() *emptypb.Empty { return &emptypb.Empty{} }, SimulationServer.StartRun),
		unaryHandler("GetRun", newStruct, SimulationServer.GetRun),
		unaryHandler("Select", newStruct, SimulationServer.Select),
		unaryHandler("Skip", newStruct, SimulationServer.Skip),
		unaryHandler("GetResult", newStruct, SimulationServer.GetResult),
	},
	Streams: []gogrpc.StreamDesc{
		{
			StreamName:    "StreamEvents",
			ServerStreams: true,
			Handler: func(srv any, stream gogrpc.ServerStream) error {
				in := newStruct()
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(SimulationServer).StreamEvents(in, stream)
			},
		},
	},
	Metadata: "draftsim/v1/simulation.proto",
}
