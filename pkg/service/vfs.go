package service

import (
	"context"

	vfsrpc "deskvfs/pkg/api/vfsrpc/v1"
	"deskvfs/pkg/app"
	"deskvfs/pkg/core"
	"deskvfs/pkg/types"
	"deskvfs/pkg/vfs"
)

// VFSService 把 vfs.VFS 暴露为 gRPC 服务
// 每个请求都直接作用于同一个工作树，事务的原子性由 vfs 层保证
type VFSService struct {
	vfsrpc.UnimplementedVFSServiceServer
	app *app.App
}

func NewVFSService(application *app.App) *VFSService {
	return &VFSService{app: application}
}

func (s *VFSService) fs() *vfs.VFS { return s.app.VFS }

func (s *VFSService) Load(ctx context.Context, _ *vfsrpc.LoadRequest) (*vfsrpc.LoadResponse, error) {
	root, err := s.fs().Load(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.LoadResponse{Source: s.fs().Source(), Root: root}, nil
}

func (s *VFSService) List(_ context.Context, req *vfsrpc.ListRequest) (*vfsrpc.ListResponse, error) {
	nodes, err := s.fs().List(types.Path(req.Path))
	if err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.ListResponse{Nodes: nodes}, nil
}

func (s *VFSService) Navigate(_ context.Context, req *vfsrpc.NavigateRequest) (*vfsrpc.NavigateResponse, error) {
	return &vfsrpc.NavigateResponse{Path: s.fs().Navigate(types.Path(req.Path), req.Segment).String()}, nil
}

func (s *VFSService) FindByID(_ context.Context, req *vfsrpc.FindByIDRequest) (*vfsrpc.NodeResponse, error) {
	id := types.NodeID(req.ID)
	node, err := s.fs().FindByID(id)
	if err != nil {
		return nil, toStatus(err)
	}
	p, err := s.fs().PathOf(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.NodeResponse{Node: node, Path: p.String()}, nil
}

func (s *VFSService) FolderIDByPath(_ context.Context, req *vfsrpc.FolderIDRequest) (*vfsrpc.FolderIDResponse, error) {
	id, err := s.fs().FolderIDByPath(types.Path(req.Path))
	if err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.FolderIDResponse{ID: id.String()}, nil
}

func (s *VFSService) Mkdir(ctx context.Context, req *vfsrpc.MkdirRequest) (*vfsrpc.NodeResponse, error) {
	node, err := s.fs().Mkdir(ctx, types.Path(req.Parent), req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.NodeResponse{Node: node}, nil
}

func (s *VFSService) MkdirUnique(ctx context.Context, req *vfsrpc.MkdirUniqueRequest) (*vfsrpc.MkdirUniqueResponse, error) {
	id, err := s.fs().MkdirUnique(ctx, types.NodeID(req.ParentID), req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.MkdirUniqueResponse{ID: id.String()}, nil
}

func (s *VFSService) CreateFile(ctx context.Context, req *vfsrpc.CreateFileRequest) (*vfsrpc.NodeResponse, error) {
	node, err := s.fs().CreateFile(ctx, types.Path(req.Parent), req.Name, core.FileAttrs{
		Mime: req.Mime,
		Href: req.Href,
		Meta: req.Meta,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.NodeResponse{Node: node}, nil
}

func (s *VFSService) Rename(ctx context.Context, req *vfsrpc.RenameRequest) (*vfsrpc.RenameResponse, error) {
	if err := s.fs().Rename(ctx, types.NodeID(req.ID), req.Name); err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.RenameResponse{Name: req.Name}, nil
}

func (s *VFSService) RenameUnique(ctx context.Context, req *vfsrpc.RenameRequest) (*vfsrpc.RenameResponse, error) {
	name, err := s.fs().RenameUnique(ctx, types.NodeID(req.ID), req.Name)
	if err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.RenameResponse{Name: name}, nil
}

func (s *VFSService) Delete(ctx context.Context, req *vfsrpc.DeleteRequest) (*vfsrpc.Empty, error) {
	if err := s.fs().Delete(ctx, types.NodeID(req.ID)); err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.Empty{}, nil
}

// Reset 删除快照后立即重新水合，服务端始终保持可用的工作树
func (s *VFSService) Reset(ctx context.Context, _ *vfsrpc.Empty) (*vfsrpc.Empty, error) {
	if err := s.fs().Reset(ctx); err != nil {
		return nil, toStatus(err)
	}
	if _, err := s.fs().Load(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.Empty{}, nil
}

func (s *VFSService) Tree(_ context.Context, _ *vfsrpc.Empty) (*vfsrpc.TreeResponse, error) {
	root, err := s.fs().Tree()
	if err != nil {
		return nil, toStatus(err)
	}
	digest, err := core.Digest(root)
	if err != nil {
		return nil, toStatus(err)
	}
	return &vfsrpc.TreeResponse{Root: root, Digest: digest}, nil
}
