package vfsrpc

import "deskvfs/pkg/core"

type Empty struct{}

type LoadRequest struct{}

type LoadResponse struct {
	Source string     `json:"source"`
	Root   *core.Node `json:"root"`
}

type ListRequest struct {
	Path string `json:"path"`
}

type ListResponse struct {
	Nodes []*core.Node `json:"nodes"`
}

type NavigateRequest struct {
	Path    string `json:"path"`
	Segment string `json:"segment"`
}

type NavigateResponse struct {
	Path string `json:"path"`
}

type FindByIDRequest struct {
	ID string `json:"id"`
}

type NodeResponse struct {
	Node *core.Node `json:"node"`
	Path string     `json:"path,omitempty"`
}

type FolderIDRequest struct {
	Path string `json:"path"`
}

type FolderIDResponse struct {
	ID string `json:"id"`
}

// MkdirRequest 按路径新建，重名报错
type MkdirRequest struct {
	Parent string `json:"parent"`
	Name   string `json:"name"`
}

// MkdirUniqueRequest 按父节点 ID 新建，重名自动加后缀
type MkdirUniqueRequest struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
}

type MkdirUniqueResponse struct {
	ID string `json:"id"`
}

type CreateFileRequest struct {
	Parent string         `json:"parent"`
	Name   string         `json:"name"`
	Mime   string         `json:"mime,omitempty"`
	Href   string         `json:"href,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

type RenameRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RenameResponse struct {
	Name string `json:"name"`
}

type DeleteRequest struct {
	ID string `json:"id"`
}

type TreeResponse struct {
	Root   *core.Node `json:"root"`
	Digest string     `json:"digest"`
}
