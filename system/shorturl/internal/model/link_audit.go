package model

import (
	"linktrack/pkg/core/model/common"
)

// AuditAction 审计动作
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// LinkAudit 短链接变更审计，只追加，仅由保留策略清理
type LinkAudit struct {
	common.CreateOnly
	LinkID    int64       `gorm:"not null;index;comment:短链接ID" json:"linkId"`
	Action    AuditAction `gorm:"type:varchar(16);not null" json:"action"`
	Before    common.JSON `gorm:"type:text" json:"before"`
	After     common.JSON `gorm:"type:text" json:"after"`
	ActorID   *int64      `json:"actorId"`
	Actor     string      `gorm:"type:varchar(100)" json:"actor"`
	IP        string      `gorm:"type:varchar(64)" json:"ip"`
	UserAgent string      `gorm:"type:varchar(1024)" json:"userAgent"`
}

func (LinkAudit) TableName() string {
	return "shorturl_link_audits"
}

// Actor 发起变更的操作人及请求来源，由调用方显式传入
type Actor struct {
	ID        *int64
	Name      string
	IP        string
	UserAgent string
}
