package components

import "github.com/decker502/wildlife/pkg/navmesh"

// NavAgentComponent 持有实体的寻路代理
// LOD 进入 Cull 时 Attached 置为 false，移动系统不再推进该代理
type NavAgentComponent struct {
	Agent    navmesh.Agent
	Attached bool
}
