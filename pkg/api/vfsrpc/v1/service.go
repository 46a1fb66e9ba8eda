package vfsrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "deskvfs.v1.VFSService"

const (
	VFSService_Load_FullMethodName           = "/" + ServiceName + "/Load"
	VFSService_List_FullMethodName           = "/" + ServiceName + "/List"
	VFSService_Navigate_FullMethodName       = "/" + ServiceName + "/Navigate"
	VFSService_FindByID_FullMethodName       = "/" + ServiceName + "/FindByID"
	VFSService_FolderIDByPath_FullMethodName = "/" + ServiceName + "/FolderIDByPath"
	VFSService_Mkdir_FullMethodName          = "/" + ServiceName + "/Mkdir"
	VFSService_MkdirUnique_FullMethodName    = "/" + ServiceName + "/MkdirUnique"
	VFSService_CreateFile_FullMethodName     = "/" + ServiceName + "/CreateFile"
	VFSService_Rename_FullMethodName         = "/" + ServiceName + "/Rename"
	VFSService_RenameUnique_FullMethodName   = "/" + ServiceName + "/RenameUnique"
	VFSService_Delete_FullMethodName         = "/" + ServiceName + "/Delete"
	VFSService_Reset_FullMethodName          = "/" + ServiceName + "/Reset"
	VFSService_Tree_FullMethodName           = "/" + ServiceName + "/Tree"
)

// VFSServiceServer 是服务端需要实现的接口
type VFSServiceServer interface {
	Load(context.Context, *LoadRequest) (*LoadResponse, error)
	List(context.Context, *ListRequest) (*ListResponse, error)
	Navigate(context.Context, *NavigateRequest) (*NavigateResponse, error)
	FindByID(context.Context, *FindByIDRequest) (*NodeResponse, error)
	FolderIDByPath(context.Context, *FolderIDRequest) (*FolderIDResponse, error)
	Mkdir(context.Context, *MkdirRequest) (*NodeResponse, error)
	MkdirUnique(context.Context, *MkdirUniqueRequest) (*MkdirUniqueResponse, error)
	CreateFile(context.Context, *CreateFileRequest) (*NodeResponse, error)
	Rename(context.Context, *RenameRequest) (*RenameResponse, error)
	RenameUnique(context.Context, *RenameRequest) (*RenameResponse, error)
	Delete(context.Context, *DeleteRequest) (*Empty, error)
	Reset(context.Context, *Empty) (*Empty, error)
	Tree(context.Context, *Empty) (*TreeResponse, error)
}

// UnimplementedVFSServiceServer 可嵌入到实现中，未实现的方法返回 Unimplemented
type UnimplementedVFSServiceServer struct{}

func (UnimplementedVFSServiceServer) Load(context.Context, *LoadRequest) (*LoadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Load not implemented")
}
func (UnimplementedVFSServiceServer) List(context.Context, *ListRequest) (*ListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method List not implemented")
}
func (UnimplementedVFSServiceServer) Navigate(context.Context, *NavigateRequest) (*NavigateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Navigate not implemented")
}
func (UnimplementedVFSServiceServer) FindByID(context.Context, *FindByIDRequest) (*NodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FindByID not implemented")
}
func (UnimplementedVFSServiceServer) FolderIDByPath(context.Context, *FolderIDRequest) (*FolderIDResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FolderIDByPath not implemented")
}
func (UnimplementedVFSServiceServer) Mkdir(context.Context, *MkdirRequest) (*NodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Mkdir not implemented")
}
func (UnimplementedVFSServiceServer) MkdirUnique(context.Context, *MkdirUniqueRequest) (*MkdirUniqueResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method MkdirUnique not implemented")
}
func (UnimplementedVFSServiceServer) CreateFile(context.Context, *CreateFileRequest) (*NodeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateFile not implemented")
}
func (UnimplementedVFSServiceServer) Rename(context.Context, *RenameRequest) (*RenameResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Rename not implemented")
}
func (UnimplementedVFSServiceServer) RenameUnique(context.Context, *RenameRequest) (*RenameResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RenameUnique not implemented")
}
func (UnimplementedVFSServiceServer) Delete(context.Context, *DeleteRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}
func (UnimplementedVFSServiceServer) Reset(context.Context, *Empty) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Reset not implemented")
}
func (UnimplementedVFSServiceServer) Tree(context.Context, *Empty) (*TreeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Tree not implemented")
}

// unary 把类型化的方法包装成 grpc.MethodHandler，并接入拦截器链
func unary[Req any, Resp any](fullMethod string, call func(VFSServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VFSServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VFSServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// VFSService_ServiceDesc 描述服务，供 grpc.Server.RegisterService 使用
var VFSService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VFSServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Load", Handler: unary(VFSService_Load_FullMethodName, VFSServiceServer.Load)},
		{MethodName: "List", Handler: unary(VFSService_List_FullMethodName, VFSServiceServer.List)},
		{MethodName: "Navigate", Handler: unary(VFSService_Navigate_FullMethodName, VFSServiceServer.Navigate)},
		{MethodName: "FindByID", Handler: unary(VFSService_FindByID_FullMethodName, VFSServiceServer.FindByID)},
		{MethodName: "FolderIDByPath", Handler: unary(VFSService_FolderIDByPath_FullMethodName, VFSServiceServer.FolderIDByPath)},
		{MethodName: "Mkdir", Handler: unary(VFSService_Mkdir_FullMethodName, VFSServiceServer.Mkdir)},
		{MethodName: "MkdirUnique", Handler: unary(VFSService_MkdirUnique_FullMethodName, VFSServiceServer.MkdirUnique)},
		{MethodName: "CreateFile", Handler: unary(VFSService_CreateFile_FullMethodName, VFSServiceServer.CreateFile)},
		{MethodName: "Rename", Handler: unary(VFSService_Rename_FullMethodName, VFSServiceServer.Rename)},
		{MethodName: "RenameUnique", Handler: unary(VFSService_RenameUnique_FullMethodName, VFSServiceServer.RenameUnique)},
		{MethodName: "Delete", Handler: unary(VFSService_Delete_FullMethodName, VFSServiceServer.Delete)},
		{MethodName: "Reset", Handler: unary(VFSService_Reset_FullMethodName, VFSServiceServer.Reset)},
		{MethodName: "Tree", Handler: unary(VFSService_Tree_FullMethodName, VFSServiceServer.Tree)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "deskvfs/v1/vfs",
}

func RegisterVFSServiceServer(s grpc.ServiceRegistrar, srv VFSServiceServer) {
	s.RegisterService(&VFSService_ServiceDesc, srv)
}

// VFSServiceClient 是客户端存根
type VFSServiceClient interface {
	Load(ctx context.Context, in *LoadRequest, opts ...grpc.CallOption) (*LoadResponse, error)
	List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error)
	Navigate(ctx context.Context, in *NavigateRequest, opts ...grpc.CallOption) (*NavigateResponse, error)
	FindByID(ctx context.Context, in *FindByIDRequest, opts ...grpc.CallOption) (*NodeResponse, error)
	FolderIDByPath(ctx context.Context, in *FolderIDRequest, opts ...grpc.CallOption) (*FolderIDResponse, error)
	Mkdir(ctx context.Context, in *MkdirRequest, opts ...grpc.CallOption) (*NodeResponse, error)
	MkdirUnique(ctx context.Context, in *MkdirUniqueRequest, opts ...grpc.CallOption) (*MkdirUniqueResponse, error)
	CreateFile(ctx context.Context, in *CreateFileRequest, opts ...grpc.CallOption) (*NodeResponse, error)
	Rename(ctx context.Context, in *RenameRequest, opts ...grpc.CallOption) (*RenameResponse, error)
	RenameUnique(ctx context.Context, in *RenameRequest, opts ...grpc.CallOption) (*RenameResponse, error)
	Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*Empty, error)
	Reset(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	Tree(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*TreeResponse, error)
}

type vfsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVFSServiceClient(cc grpc.ClientConnInterface) VFSServiceClient {
	return &vfsServiceClient{cc: cc}
}

// invoke 统一强制使用 JSON 编码
func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vfsServiceClient) Load(ctx context.Context, in *LoadRequest, opts ...grpc.CallOption) (*LoadResponse, error) {
	return invoke[LoadResponse](ctx, c.cc, VFSService_Load_FullMethodName, in, opts)
}

func (c *vfsServiceClient) List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error) {
	return invoke[ListResponse](ctx, c.cc, VFSService_List_FullMethodName, in, opts)
}

func (c *vfsServiceClient) Navigate(ctx context.Context, in *NavigateRequest, opts ...grpc.CallOption) (*NavigateResponse, error) {
	return invoke[NavigateResponse](ctx, c.cc, VFSService_Navigate_FullMethodName, in, opts)
}

func (c *vfsServiceClient) FindByID(ctx context.Context, in *FindByIDRequest, opts ...grpc.CallOption) (*NodeResponse, error) {
	return invoke[NodeResponse](ctx, c.cc, VFSService_FindByID_FullMethodName, in, opts)
}

func (c *vfsServiceClient) FolderIDByPath(ctx context.Context, in *FolderIDRequest, opts ...grpc.CallOption) (*FolderIDResponse, error) {
	return invoke[FolderIDResponse](ctx, c.cc, VFSService_FolderIDByPath_FullMethodName, in, opts)
}

func (c *vfsServiceClient) Mkdir(ctx context.Context, in *MkdirRequest, opts ...grpc.CallOption) (*NodeResponse, error) {
	return invoke[NodeResponse](ctx, c.cc, VFSService_Mkdir_FullMethodName, in, opts)
}

func (c *vfsServiceClient) MkdirUnique(ctx context.Context, in *MkdirUniqueRequest, opts ...grpc.CallOption) (*MkdirUniqueResponse, error) {
	return invoke[MkdirUniqueResponse](ctx, c.cc, VFSService_MkdirUnique_FullMethodName, in, opts)
}

func (c *vfsServiceClient) CreateFile(ctx context.Context, in *CreateFileRequest, opts ...grpc.CallOption) (*NodeResponse, error) {
	return invoke[NodeResponse](ctx, c.cc, VFSService_CreateFile_FullMethodName, in, opts)
}

func (c *vfsServiceClient) Rename(ctx context.Context, in *RenameRequest, opts ...grpc.CallOption) (*RenameResponse, error) {
	return invoke[RenameResponse](ctx, c.cc, VFSService_Rename_FullMethodName, in, opts)
}

func (c *vfsServiceClient) RenameUnique(ctx context.Context, in *RenameRequest, opts ...grpc.CallOption) (*RenameResponse, error) {
	return invoke[RenameResponse](ctx, c.cc, VFSService_RenameUnique_FullMethodName, in, opts)
}

func (c *vfsServiceClient) Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, VFSService_Delete_FullMethodName, in, opts)
}

func (c *vfsServiceClient) Reset(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, VFSService_Reset_FullMethodName, in, opts)
}

func (c *vfsServiceClient) Tree(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*TreeResponse, error) {
	return invoke[TreeResponse](ctx, c.cc, VFSService_Tree_FullMethodName, in, opts)
}
