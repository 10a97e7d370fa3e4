// Package searchcondv1 holds the gRPC bindings for proto/searchcond/v1.
//
// The service exchanges well-known Struct and Empty messages only, so no
// message code is generated; this file mirrors protoc-gen-go-grpc output.
package searchcondv1

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
	emptypb "google.golang.org/protobuf/types/known/emptypb"
	structpb "google.golang.org/protobuf/types/known/structpb"
)

const (
	ConditionService_Infer_FullMethodName = "/searchcond.v1.ConditionService/Infer"
	ConditionService_Rules_FullMethodName = "/searchcond.v1.ConditionService/Rules"
)

// ConditionServiceClient is the client API for ConditionService service.
type ConditionServiceClient interface {
	Infer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Rules(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type conditionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewConditionServiceClient(cc grpc.ClientConnInterface) ConditionServiceClient {
	return &conditionServiceClient{cc}
}

func (c *conditionServiceClient) Infer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ConditionService_Infer_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *conditionServiceClient) Rules(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ConditionService_Rules_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ConditionServiceServer is the server API for ConditionService service.
// All implementations must embed UnimplementedConditionServiceServer
// for forward compatibility.
type ConditionServiceServer interface {
	Infer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Rules(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	mustEmbedUnimplementedConditionServiceServer()
}

// UnimplementedConditionServiceServer must be embedded to have
// forward compatible implementations.
type UnimplementedConditionServiceServer struct{}

func (UnimplementedConditionServiceServer) Infer(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Infer not implemented")
}
func (UnimplementedConditionServiceServer) Rules(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Rules not implemented")
}
func (UnimplementedConditionServiceServer) mustEmbedUnimplementedConditionServiceServer() {}

func RegisterConditionServiceServer(s grpc.ServiceRegistrar, srv ConditionServiceServer) {
	s.RegisterService(&ConditionService_ServiceDesc, srv)
}

func _ConditionService_Infer_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConditionServiceServer).Infer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ConditionService_Infer_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConditionServiceServer).Infer(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _ConditionService_Rules_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ConditionServiceServer).Rules(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ConditionService_Rules_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ConditionServiceServer).Rules(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ConditionService_ServiceDesc is the grpc.ServiceDesc for ConditionService service.
var ConditionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "searchcond.v1.ConditionService",
	HandlerType: (*ConditionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Infer",
			Handler:    _ConditionService_Infer_Handler,
		},
		{
			MethodName: "Rules",
			Handler:    _ConditionService_Rules_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "searchcond/v1/condition.proto",
}
