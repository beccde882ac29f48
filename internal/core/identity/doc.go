// Package identity 实现节点身份的加载与持久化
//
// 节点身份是一对 Ed25519 密钥，节点地址（PeerID）由公钥派生。
// 身份在进程生命周期内只加载一次，此后不可变。
//
// # 加载规则
//
//   - 文件存在且可解码：直接使用
//   - 文件存在但损坏/不可读：记录警告，视为不存在
//   - 文件不存在：生成新密钥，创建父目录，以 0600 原子写入
//
// 文件系统错误（无法创建目录、无法写入）是致命的，返回带路径的 *PathError。
//
// # 路径解析
//
//	显式路径 > 环境变量 IDENTITY_KEY_PATH > <cwd>/.p2p/identity.key
//
// # 编码
//
// 使用 libp2p 的 protobuf 私钥编码（crypto.MarshalPrivateKey）。
package identity
