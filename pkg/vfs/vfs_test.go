package vfs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskvfs/pkg/core"
	"deskvfs/pkg/id"
	"deskvfs/pkg/seed"
	"deskvfs/pkg/storage"
	"deskvfs/pkg/storage/memory"
	"deskvfs/pkg/types"
)

func TestLoad_FromSeed(t *testing.T) {
	store := newFailingStore()
	v := newTestVFS(t, store)

	root := mustLoad(t, v)
	assert.Equal(t, id.SeedID("/"), root.ID)
	assert.Equal(t, SourceSeed, v.Source())

	desk := mustList(t, v, "/Desktop")
	require.Len(t, desk, 1)
	assert.Equal(t, "README.txt", desk[0].Name)
	assert.Equal(t, id.SeedID("/Desktop/README.txt"), desk[0].ID)

	// 水合不写存储
	_, err := store.Get(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoad_KeepsSeedDocumentIDs(t *testing.T) {
	doc := `{"name":"/","kind":"folder","children":[
		{"id":"desk","name":"Desktop","kind":"folder","children":[{"name":"a.txt","kind":"file"}]}
	]}`
	tree, err := seed.Decode([]byte(doc))
	require.NoError(t, err)

	v := New(newFailingStore(), staticSeed{tree}, id.NewGenerator(context.Background(), nil))
	mustLoad(t, v)

	n, err := v.FindByID("desk")
	require.NoError(t, err)
	assert.Equal(t, "Desktop", n.Name)

	files := mustList(t, v, "/Desktop")
	assert.Equal(t, id.SeedID("/Desktop/a.txt"), files[0].ID)

	// 种子缓存未被修改
	assert.True(t, tree.Child("Desktop").Children[0].ID.IsZero())
}

type staticSeed struct{ root *core.Node }

func (s staticSeed) Load(context.Context) *core.Node { return s.root }

func TestLoad_IdempotentAndReturnsCopies(t *testing.T) {
	v := newTestVFS(t, newFailingStore())

	first := mustLoad(t, v)
	first.Children = nil
	first.Name = "mutated"

	second := mustLoad(t, v)
	assert.Equal(t, "/", second.Name)
	assert.Len(t, second.Children, 2)

	listed := mustList(t, v, "/")
	listed[0].Name = "hacked"
	assert.Equal(t, []string{"Desktop", "Work"}, names(mustList(t, v, "/")))
}

func TestOperations_RequireHydration(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	ctx := context.Background()

	_, err := v.List("/")
	assert.ErrorIs(t, err, ErrNotHydrated)
	_, err = v.FindByID("x")
	assert.ErrorIs(t, err, ErrNotHydrated)
	_, err = v.FolderIDByPath("/")
	assert.ErrorIs(t, err, ErrNotHydrated)
	_, err = v.Mkdir(ctx, "/", "X")
	assert.ErrorIs(t, err, ErrNotHydrated)
	_, err = v.CreateFile(ctx, "/", "x.txt", core.FileAttrs{})
	assert.ErrorIs(t, err, ErrNotHydrated)
	assert.ErrorIs(t, v.Rename(ctx, "x", "y"), ErrNotHydrated)
	assert.ErrorIs(t, v.Delete(ctx, "x"), ErrNotHydrated)
	_, err = v.Tree()
	assert.ErrorIs(t, err, ErrNotHydrated)
	assert.False(t, v.Loaded())

	// Navigate 是纯路径计算
	assert.Equal(t, types.Path("/Work"), v.Navigate("/", "Work"))
}

func TestMkdirThenRename_KeepsID(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	mustLoad(t, v)
	ctx := context.Background()

	x, err := v.Mkdir(ctx, "/", "X")
	require.NoError(t, err)
	assert.True(t, x.ID.IsLive())
	assert.True(t, x.IsFolder())

	require.NoError(t, v.Rename(ctx, x.ID, "Y"))

	got, err := v.FindByID(x.ID)
	require.NoError(t, err)
	assert.Equal(t, "Y", got.Name)
	assert.Equal(t, x.ID, got.ID)

	p, err := v.PathOf(x.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Path("/Y"), p)
}

func TestMkdir_DuplicateStrictVsUnique(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	root := mustLoad(t, v)
	ctx := context.Background()

	_, err := v.Mkdir(ctx, "/", "Dup")
	require.NoError(t, err)

	_, err = v.Mkdir(ctx, "/", "Dup")
	assert.ErrorIs(t, err, ErrDuplicateName)

	id2, err := v.MkdirUnique(ctx, root.ID, "Dup")
	require.NoError(t, err)
	n, err := v.FindByID(id2)
	require.NoError(t, err)
	assert.Equal(t, "Dup (2)", n.Name)

	id3, err := v.MkdirUnique(ctx, root.ID, "  Dup  ")
	require.NoError(t, err)
	n, err = v.FindByID(id3)
	require.NoError(t, err)
	assert.Equal(t, "Dup (3)", n.Name)

	assert.Equal(t, []string{"Desktop", "Dup", "Dup (2)", "Dup (3)", "Work"}, names(mustList(t, v, "/")))
}

func TestMkdirUnique_Errors(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	root := mustLoad(t, v)
	ctx := context.Background()

	_, err := v.MkdirUnique(ctx, "missing", "A")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = v.MkdirUnique(ctx, id.SeedID("/Desktop/README.txt"), "A")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = v.MkdirUnique(ctx, root.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestMkdir_StorageFailureRollsBack_NoPriorSnapshot(t *testing.T) {
	store := newFailingStore()
	v := newTestVFS(t, store)
	mustLoad(t, v)
	ctx := context.Background()

	store.failSet.Store(true)
	_, err := v.Mkdir(ctx, "/Work", "New")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.ErrorIs(t, err, errQuota)

	// 之前没有快照，之后也没有
	_, err = store.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, []string{"Projects"}, names(mustList(t, v, "/Work")))

	// 树依然可用
	store.failSet.Store(false)
	_, err = v.Mkdir(ctx, "/Work", "New")
	require.NoError(t, err)
	assert.Equal(t, []string{"New", "Projects"}, names(mustList(t, v, "/Work")))
}

func TestMutations_StorageFailureKeepsBytes(t *testing.T) {
	store := newFailingStore()
	v := newTestVFS(t, store)
	root := mustLoad(t, v)
	ctx := context.Background()

	file, err := v.CreateFile(ctx, "/Desktop", "notes.txt", core.FileAttrs{Mime: "text/plain"})
	require.NoError(t, err)
	before, err := store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	digest, err := v.Digest()
	require.NoError(t, err)

	store.failSet.Store(true)

	_, err = v.Mkdir(ctx, "/", "Nope")
	assert.ErrorIs(t, err, ErrStorageWrite)
	_, err = v.MkdirUnique(ctx, root.ID, "Nope")
	assert.ErrorIs(t, err, ErrStorageWrite)
	_, err = v.CreateFile(ctx, "/", "nope.txt", core.FileAttrs{})
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.ErrorIs(t, v.Rename(ctx, file.ID, "renamed.txt"), ErrStorageWrite)
	_, err = v.RenameUnique(ctx, file.ID, "renamed.txt")
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.ErrorIs(t, v.Delete(ctx, file.ID), ErrStorageWrite)

	after, err := store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	afterDigest, err := v.Digest()
	require.NoError(t, err)
	assert.Equal(t, digest, afterDigest)
	assert.Equal(t, []string{"Desktop", "Work"}, names(mustList(t, v, "/")))
	assert.Equal(t, []string{"README.txt", "notes.txt"}, names(mustList(t, v, "/Desktop")))
}

func TestReset_ReproducesSeedIDs(t *testing.T) {
	store := newFailingStore()
	v := newTestVFS(t, store)
	mustLoad(t, v)
	ctx := context.Background()

	first := entries(mustList(t, v, "/"))

	_, err := v.Mkdir(ctx, "/", "Temp")
	require.NoError(t, err)
	require.NoError(t, v.Delete(ctx, id.SeedID("/Work")))

	require.NoError(t, v.Reset(ctx))
	assert.False(t, v.Loaded())
	_, err = store.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	mustLoad(t, v)
	assert.Equal(t, first, entries(mustList(t, v, "/")))
	assert.Equal(t, SourceSeed, v.Source())
}

func TestReset_RemoveFailure(t *testing.T) {
	store := newFailingStore()
	v := newTestVFS(t, store)
	mustLoad(t, v)

	store.failRemove.Store(true)
	err := v.Reset(context.Background())
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.True(t, v.Loaded())
}

func TestNavigate_NoEscapeAboveRoot(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	assert.Equal(t, types.Path("/"), v.Navigate("/", ".."))
	assert.Equal(t, types.Path("/"), v.Navigate("/", "up"))
	assert.Equal(t, types.Path("/Work"), v.Navigate("/Work/Projects", ".."))
}

func TestLoad_FromSnapshot(t *testing.T) {
	store := newFailingStore()
	ctx := context.Background()

	first := newTestVFS(t, store)
	mustLoad(t, first)
	made, err := first.Mkdir(ctx, "/Work/Projects", "deskvfs")
	require.NoError(t, err)

	// 新进程：同一存储
	second := newTestVFS(t, store)
	mustLoad(t, second)
	assert.Equal(t, SourceSnapshot, second.Source())

	got := mustList(t, second, "/Work/Projects")
	require.Len(t, got, 1)
	assert.Equal(t, made.ID, got[0].ID)
}

func TestLoad_CorruptedSnapshotFallsBackToSeed(t *testing.T) {
	store := newFailingStore()
	ctx := context.Background()
	garbage := []byte("{not json")
	require.NoError(t, store.Store.Set(ctx, DefaultKey, garbage))

	v := newTestVFS(t, store)
	mustLoad(t, v)
	assert.Equal(t, SourceSeed, v.Source())
	assert.Equal(t, []string{"Desktop", "Work"}, names(mustList(t, v, "/")))

	// 损坏的字节保留到下一次成功提交
	raw, err := store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, garbage, raw)
}

func TestLoad_StoreReadFailure(t *testing.T) {
	store := newFailingStore()
	store.failGet.Store(true)
	v := newTestVFS(t, store)

	_, err := v.Load(context.Background())
	require.Error(t, err)

	var oe *OpError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "load", oe.Op)
	assert.False(t, v.Loaded())
}

func TestCodec_CBORAndCrossDecoding(t *testing.T) {
	store := newFailingStore()
	ctx := context.Background()

	cborVFS := newTestVFS(t, store, WithCodec(core.CBORCodec{}))
	mustLoad(t, cborVFS)
	_, err := cborVFS.Mkdir(ctx, "/", "Binary")
	require.NoError(t, err)

	raw, err := store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.NotEqual(t, byte('{'), raw[0])

	// 配置切回 json 之后仍能读出旧的 cbor 快照
	jsonVFS := newTestVFS(t, store)
	mustLoad(t, jsonVFS)
	assert.Equal(t, SourceSnapshot, jsonVFS.Source())
	assert.Contains(t, names(mustList(t, jsonVFS, "/")), "Binary")
}

func TestWithKey(t *testing.T) {
	store := newFailingStore()
	v := newTestVFS(t, store, WithKey("custom.vfs"))
	mustLoad(t, v)
	_, err := v.Mkdir(context.Background(), "/", "A")
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.Contains(t, snap, "custom.vfs")
	assert.NotContains(t, snap, DefaultKey)
}

func TestRenameAndDelete_Root(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	root := mustLoad(t, v)
	ctx := context.Background()

	assert.ErrorIs(t, v.Rename(ctx, root.ID, "x"), ErrCannotRenameRoot)
	_, err := v.RenameUnique(ctx, root.ID, "x")
	assert.ErrorIs(t, err, ErrCannotRenameRoot)
	assert.ErrorIs(t, v.Delete(ctx, root.ID), ErrCannotRenameRoot)
}

func TestRename_Validation(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	mustLoad(t, v)
	ctx := context.Background()
	work := id.SeedID("/Work")

	assert.ErrorIs(t, v.Rename(ctx, work, ""), ErrInvalidName)
	assert.ErrorIs(t, v.Rename(ctx, work, "a/b"), ErrInvalidName)
	assert.ErrorIs(t, v.Rename(ctx, work, "Desktop"), ErrDuplicateName)
	assert.ErrorIs(t, v.Rename(ctx, "missing", "x"), ErrNodeNotFound)

	// 改成自己的名字不算冲突
	require.NoError(t, v.Rename(ctx, work, "Work"))
}

func TestRenameUnique(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	mustLoad(t, v)
	ctx := context.Background()
	work := id.SeedID("/Work")

	got, err := v.RenameUnique(ctx, work, "  Desktop ")
	require.NoError(t, err)
	assert.Equal(t, "Desktop (2)", got)

	got, err = v.RenameUnique(ctx, work, "Desktop (2)")
	require.NoError(t, err)
	assert.Equal(t, "Desktop (2)", got)

	_, err = v.RenameUnique(ctx, work, "   ")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestDelete_RemovesSubtree(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	mustLoad(t, v)
	ctx := context.Background()

	inner, err := v.Mkdir(ctx, "/Work/Projects", "inner")
	require.NoError(t, err)
	require.NoError(t, v.Delete(ctx, id.SeedID("/Work")))

	_, err = v.FindByID(inner.ID)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = v.List("/Work")
	assert.ErrorIs(t, err, ErrPathNotFound)

	assert.ErrorIs(t, v.Delete(ctx, id.SeedID("/Work")), ErrNodeNotFound)
}

func TestCreateFile(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	mustLoad(t, v)
	ctx := context.Background()

	meta := map[string]any{"pinned": true}
	f, err := v.CreateFile(ctx, "/Desktop", "todo.md", core.FileAttrs{Mime: "text/markdown", Href: "/todo", Meta: meta})
	require.NoError(t, err)
	meta["pinned"] = false

	got, err := v.FindByID(f.ID)
	require.NoError(t, err)
	assert.Equal(t, types.KindFile, got.Kind)
	assert.Equal(t, "text/markdown", got.Mime)
	assert.Equal(t, "/todo", got.Href)
	assert.Equal(t, true, got.Meta["pinned"])

	_, err = v.CreateFile(ctx, "/Desktop", "todo.md", core.FileAttrs{})
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = v.CreateFile(ctx, "/Desktop/README.txt", "x", core.FileAttrs{})
	assert.ErrorIs(t, err, ErrPathIsFile)
	_, err = v.CreateFile(ctx, "/Nope", "x", core.FileAttrs{})
	assert.ErrorIs(t, err, ErrPathNotFound)
	_, err = v.Mkdir(ctx, "/", "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFolderIDByPath(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	mustLoad(t, v)

	got, err := v.FolderIDByPath("/Work/Projects")
	require.NoError(t, err)
	assert.Equal(t, id.SeedID("/Work/Projects"), got)

	// 路径段也可以是 ID
	got, err = v.FolderIDByPath(types.Path("/" + id.SeedID("/Work").String() + "/Projects"))
	require.NoError(t, err)
	assert.Equal(t, id.SeedID("/Work/Projects"), got)

	_, err = v.FolderIDByPath("/Desktop/README.txt")
	assert.ErrorIs(t, err, ErrPathIsFile)
	_, err = v.FolderIDByPath("/Nope")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestList_Errors(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	mustLoad(t, v)

	_, err := v.List("/Desktop/README.txt")
	assert.ErrorIs(t, err, ErrPathIsFile)
	_, err = v.List("/Missing")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestOpError_Message(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	mustLoad(t, v)

	_, err := v.Mkdir(context.Background(), "/", "Desktop")
	require.Error(t, err)
	assert.Equal(t, `mkdir /Desktop: name already exists: "Desktop"`, err.Error())
}

func TestConcurrentMkdirUnique(t *testing.T) {
	v := newTestVFS(t, newFailingStore())
	root := mustLoad(t, v)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	ids := make([]types.NodeID, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = v.MkdirUnique(ctx, root.ID, "New Folder")
		}(i)
	}
	wg.Wait()

	seen := map[types.NodeID]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]])
		seen[ids[i]] = true
	}

	listed := names(mustList(t, v, "/"))
	assert.Contains(t, listed, "New Folder")
	assert.Contains(t, listed, fmt.Sprintf("New Folder (%d)", n))
	assert.Len(t, listed, n+2)
}

func TestSnapshotIsValidDocument(t *testing.T) {
	store := newFailingStore()
	v := newTestVFS(t, store)
	mustLoad(t, v)
	_, err := v.Mkdir(context.Background(), "/", "A")
	require.NoError(t, err)

	raw, err := store.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	// JSON 快照本身也是合法的种子文档
	tree, err := seed.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, 6, tree.Count())
}

func TestAssignSeedIDs_DuplicateExplicitID(t *testing.T) {
	root := core.NewFolder("", "/")
	root.Children = []*core.Node{
		core.NewFolder(id.SeedID("/B"), "A"),
		core.NewFolder("", "B"),
	}
	err := AssignSeedIDs(root)
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

var _ storage.Store = (*memory.Store)(nil)

func TestLoad_InvalidSnapshotFallsBackToSeed(t *testing.T) {
	store := newFailingStore()
	ctx := context.Background()
	broken := []byte(`{"id":"r","name":"/","kind":"folder","children":[` +
		`{"id":"a","name":"Dup","kind":"folder"},{"id":"a","name":"Dup","kind":"folder"}]}`)
	require.NoError(t, store.Store.Set(ctx, DefaultKey, broken))

	v := newTestVFS(t, store)
	mustLoad(t, v)
	assert.Equal(t, SourceSeed, v.Source())
	assert.Equal(t, []string{"Desktop", "Work"}, names(mustList(t, v, "/")))

	raw, err := store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, broken, raw)

	// 下一次提交写入的是合法的树
	_, err = v.Mkdir(ctx, "/", "X")
	require.NoError(t, err)
	raw, err = store.Get(ctx, DefaultKey)
	require.NoError(t, err)
	committed, err := core.JSONCodec{}.Unmarshal(raw)
	require.NoError(t, err)
	assert.NoError(t, core.Validate(committed))
	assert.Equal(t, []string{"Desktop", "Work", "X"}, names(mustList(t, v, "/")))
}

func TestCommit_RejectsInvalidCandidate(t *testing.T) {
	store := newFailingStore()
	ctx := context.Background()
	v := newTestVFS(t, store)
	mustLoad(t, v)
	before, err := v.Digest()
	require.NoError(t, err)

	v.mu.Lock()
	err = v.commit(ctx, "mkdir", func(root *core.Node) error {
		root.Children = append(root.Children, core.NewFolder("dup-1", "Desktop"))
		return nil
	})
	v.mu.Unlock()
	assert.ErrorIs(t, err, ErrDuplicateName)

	after, err := v.Digest()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = store.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
