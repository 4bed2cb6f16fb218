package service

import "errors"

// ErrScreensAttached 地点下仍挂载屏幕，需先拆除屏幕才能修改
var ErrScreensAttached = errors.New("screens count is bigger then 0")

// CheckMutable 地点的地址、地理位置、分类仅在未挂载任何屏幕时允许修改。
// 创建与标签更新不经过该校验。
func CheckMutable(screensCount int64) error {
	if screensCount != 0 {
		return ErrScreensAttached
	}
	return nil
}
