package sqldb

import "time"

// Entry 是一条 KV 记录
// 整棵 VFS 树序列化后作为一个 blob 存在 Value 中
type Entry struct {
	Key string `gorm:"column:kv_key;primaryKey;type:varchar(255)"`

	Value []byte `gorm:"not null"`

	// Version 每次覆盖写 +1，便于排查写入次数
	Version int64 `gorm:"default:1"`

	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "kv_entries"
}
