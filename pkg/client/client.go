package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	vfsrpc "deskvfs/pkg/api/vfsrpc/v1"
	"deskvfs/pkg/core"
	"deskvfs/pkg/types"
	"deskvfs/pkg/vfs"
)

// Client 封装与 vfs-server 的连接，方法签名与本地 vfs.VFS 对齐
type Client struct {
	conn *grpc.ClientConn
	VFS  vfsrpc.VFSServiceClient
}

// New 创建客户端；只负责创建对象，不等待连接就绪
func New(addr string, extra ...grpc.DialOption) (*Client, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(vfsrpc.CodecName)),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	opts = append(opts, extra...)

	// NewClient 立即返回，连接在后台建立
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", addr, err)
	}

	return &Client{
		conn: conn,
		VFS:  vfsrpc.NewVFSServiceClient(conn),
	}, nil
}

// Close 关闭底层连接
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) Load(ctx context.Context) (*core.Node, error) {
	resp, err := c.VFS.Load(ctx, &vfsrpc.LoadRequest{})
	if err != nil {
		return nil, FromStatus(err)
	}
	return resp.Root, nil
}

func (c *Client) List(ctx context.Context, p types.Path) ([]*core.Node, error) {
	resp, err := c.VFS.List(ctx, &vfsrpc.ListRequest{Path: p.String()})
	if err != nil {
		return nil, FromStatus(err)
	}
	return resp.Nodes, nil
}

func (c *Client) Navigate(ctx context.Context, p types.Path, segment string) (types.Path, error) {
	resp, err := c.VFS.Navigate(ctx, &vfsrpc.NavigateRequest{Path: p.String(), Segment: segment})
	if err != nil {
		return "", FromStatus(err)
	}
	return types.Path(resp.Path), nil
}

func (c *Client) Find(ctx context.Context, id types.NodeID) (*core.Node, types.Path, error) {
	resp, err := c.VFS.FindByID(ctx, &vfsrpc.FindByIDRequest{ID: id.String()})
	if err != nil {
		return nil, "", FromStatus(err)
	}
	return resp.Node, types.Path(resp.Path), nil
}

func (c *Client) FolderIDByPath(ctx context.Context, p types.Path) (types.NodeID, error) {
	resp, err := c.VFS.FolderIDByPath(ctx, &vfsrpc.FolderIDRequest{Path: p.String()})
	if err != nil {
		return "", FromStatus(err)
	}
	return types.NodeID(resp.ID), nil
}

func (c *Client) Mkdir(ctx context.Context, parent types.Path, name string) (*core.Node, error) {
	resp, err := c.VFS.Mkdir(ctx, &vfsrpc.MkdirRequest{Parent: parent.String(), Name: name})
	if err != nil {
		return nil, FromStatus(err)
	}
	return resp.Node, nil
}

func (c *Client) MkdirUnique(ctx context.Context, parentID types.NodeID, name string) (types.NodeID, error) {
	resp, err := c.VFS.MkdirUnique(ctx, &vfsrpc.MkdirUniqueRequest{ParentID: parentID.String(), Name: name})
	if err != nil {
		return "", FromStatus(err)
	}
	return types.NodeID(resp.ID), nil
}

func (c *Client) CreateFile(ctx context.Context, parent types.Path, name string, attrs core.FileAttrs) (*core.Node, error) {
	resp, err := c.VFS.CreateFile(ctx, &vfsrpc.CreateFileRequest{
		Parent: parent.String(),
		Name:   name,
		Mime:   attrs.Mime,
		Href:   attrs.Href,
		Meta:   attrs.Meta,
	})
	if err != nil {
		return nil, FromStatus(err)
	}
	return resp.Node, nil
}

func (c *Client) Rename(ctx context.Context, id types.NodeID, name string) error {
	_, err := c.VFS.Rename(ctx, &vfsrpc.RenameRequest{ID: id.String(), Name: name})
	return FromStatus(err)
}

func (c *Client) RenameUnique(ctx context.Context, id types.NodeID, name string) (string, error) {
	resp, err := c.VFS.RenameUnique(ctx, &vfsrpc.RenameRequest{ID: id.String(), Name: name})
	if err != nil {
		return "", FromStatus(err)
	}
	return resp.Name, nil
}

func (c *Client) Delete(ctx context.Context, id types.NodeID) error {
	_, err := c.VFS.Delete(ctx, &vfsrpc.DeleteRequest{ID: id.String()})
	return FromStatus(err)
}

func (c *Client) Reset(ctx context.Context) error {
	_, err := c.VFS.Reset(ctx, &vfsrpc.Empty{})
	return FromStatus(err)
}

func (c *Client) Tree(ctx context.Context) (*core.Node, string, error) {
	resp, err := c.VFS.Tree(ctx, &vfsrpc.Empty{})
	if err != nil {
		return nil, "", FromStatus(err)
	}
	return resp.Root, resp.Digest, nil
}

// sentinels 按错误文本还原，顺序无关：各哨兵的文本互不包含
var sentinels = []error{
	vfs.ErrNotHydrated,
	vfs.ErrInvalidName,
	vfs.ErrDuplicateName,
	vfs.ErrNodeNotFound,
	vfs.ErrPathNotFound,
	vfs.ErrPathIsFile,
	vfs.ErrCannotRenameRoot,
	vfs.ErrStorageWrite,
	vfs.ErrDuplicateID,
}

// FromStatus 把服务端返回的 status 错误还原成可用 errors.Is 判断的领域错误
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	msg := st.Message()
	for _, s := range sentinels {
		if strings.Contains(msg, s.Error()) {
			return fmt.Errorf("%w (remote: %s)", s, msg)
		}
	}
	return err
}
