package pagepb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	PageService_GetPage_FullMethodName     = "/mangapages.PageService/GetPage"
	PageService_SavePage_FullMethodName    = "/mangapages.PageService/SavePage"
	PageService_AnalyzePage_FullMethodName = "/mangapages.PageService/AnalyzePage"
)

type PageServiceClient interface {
	GetPage(ctx context.Context, in *GetPageRequest, opts ...grpc.CallOption) (*PageResponse, error)
	SavePage(ctx context.Context, in *SavePageRequest, opts ...grpc.CallOption) (*PageResponse, error)
	AnalyzePage(ctx context.Context, in *AnalyzePageRequest, opts ...grpc.CallOption) (*PageResponse, error)
}

type pageServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPageServiceClient(cc grpc.ClientConnInterface) PageServiceClient {
	return &pageServiceClient{cc}
}

func (c *pageServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *pageServiceClient) GetPage(ctx context.Context, in *GetPageRequest, opts ...grpc.CallOption) (*PageResponse, error) {
	out := new(PageResponse)
	if err := c.invoke(ctx, PageService_GetPage_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pageServiceClient) SavePage(ctx context.Context, in *SavePageRequest, opts ...grpc.CallOption) (*PageResponse, error) {
	out := new(PageResponse)
	if err := c.invoke(ctx, PageService_SavePage_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pageServiceClient) AnalyzePage(ctx context.Context, in *AnalyzePageRequest, opts ...grpc.CallOption) (*PageResponse, error) {
	out := new(PageResponse)
	if err := c.invoke(ctx, PageService_AnalyzePage_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

type PageServiceServer interface {
	GetPage(context.Context, *GetPageRequest) (*PageResponse, error)
	SavePage(context.Context, *SavePageRequest) (*PageResponse, error)
	AnalyzePage(context.Context, *AnalyzePageRequest) (*PageResponse, error)
}

// UnimplementedPageServiceServer can be embedded for forward compatibility.
type UnimplementedPageServiceServer struct{}

func (UnimplementedPageServiceServer) GetPage(context.Context, *GetPageRequest) (*PageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPage not implemented")
}

func (UnimplementedPageServiceServer) SavePage(context.Context, *SavePageRequest) (*PageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SavePage not implemented")
}

func (UnimplementedPageServiceServer) AnalyzePage(context.Context, *AnalyzePageRequest) (*PageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AnalyzePage not implemented")
}

func RegisterPageServiceServer(s grpc.ServiceRegistrar, srv PageServiceServer) {
	s.RegisterService(&PageService_ServiceDesc, srv)
}

func _PageService_GetPage_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetPageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PageServiceServer).GetPage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PageService_GetPage_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PageServiceServer).GetPage(ctx, req.(*GetPageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PageService_SavePage_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SavePageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PageServiceServer).SavePage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PageService_SavePage_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PageServiceServer).SavePage(ctx, req.(*SavePageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PageService_AnalyzePage_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AnalyzePageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PageServiceServer).AnalyzePage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PageService_AnalyzePage_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PageServiceServer).AnalyzePage(ctx, req.(*AnalyzePageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var PageService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "mangapages.PageService",
	HandlerType: (*PageServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPage", Handler: _PageService_GetPage_Handler},
		{MethodName: "SavePage", Handler: _PageService_SavePage_Handler},
		{MethodName: "AnalyzePage", Handler: _PageService_AnalyzePage_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mangapages/page.proto",
}
