// Package composer 按节点角色组合协议模块
//
// 角色与模块的对应关系：
//
//	角色      存活检测  广播  路由表模式  中继
//	client    是        是    client      否
//	relay     是        是    server      是
//	full      是        是    server      是
//
// PlanFor 是纯函数，只做决策；Compose 通过 Factory 构造模块，不产生网络副作用。
// 监听地址在 fx 启动阶段才绑定，绑定失败视为启动失败。
package composer
