package vehicle

import (
	"time"
)

// Vehicle 是 vehicles 表的 GORM 模型。
// 车辆目录对本服务只读：调度只引用，不修改。
type Vehicle struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Make         string    `gorm:"size:64;not null" json:"make"`
	Model        string    `gorm:"size:64;not null" json:"model"`
	LicensePlate string    `gorm:"uniqueIndex;size:32;not null" json:"licensePlate"`
	Status       string    `gorm:"size:16;not null;default:'available'" json:"status"` // available / busy / offline
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`
}
