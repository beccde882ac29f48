// Package bootstrap 实现种子列表解析与初始连通
//
// # 引导流程
//
//  1. ParseSeedList 解析逗号分隔的种子列表（环境变量 BOOTSTRAP_PEERS）
//  2. Resolve 按是否携带 /p2p/<PeerID> 将种子分为两类：
//     - 已知身份：直接写入路由表，不拨号
//     - 未知身份：加入拨号目标，连接后由 identify 补全身份与地址
//  3. Apply 执行插入与拨号，最后触发一次路由表刷新
//
// 单个种子解析失败只记录并跳过；刷新无法发出也不会导致启动失败。
package bootstrap
