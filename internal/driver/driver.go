package driver

import (
	"time"
)

// Driver 是 drivers 表的 GORM 模型。
// 司机目录对本服务只读，身份/账号体系由外部系统维护。
type Driver struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	LicenseNo string    `gorm:"size:64" json:"licenseNo"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}
