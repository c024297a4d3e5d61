package components

import "github.com/decker502/wildlife/pkg/utils"

// TransformComponent 实体的世界位置与水平朝向
// 位置由导航代理（或跳跃弧线任务）写入，行为层只读
type TransformComponent struct {
	Position utils.Vec3
	Forward  utils.Vec3 // 水平单位向量
}
