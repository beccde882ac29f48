package types

// ============================================================================
//                              Command - 外部命令
// ============================================================================

// Command 外部调用方投递给事件循环的命令
//
// 封闭集合，只有本包内的类型实现该接口。
type Command interface {
	// CommandName 命令名（用于日志与指标）
	CommandName() string
	isCommand()
}

// PublishCommand 在规范主题上发布一条消息
type PublishCommand struct {
	Payload []byte
}

// CommandName 实现 Command
func (PublishCommand) CommandName() string { return "publish" }
func (PublishCommand) isCommand()          {}

// FindPeerCommand 发起对 Target 的最近节点查询
//
// 查询结果不同步返回，而是以 PeerDiscovered 事件的形式稍后到达。
type FindPeerCommand struct {
	Target PeerID
}

// CommandName 实现 Command
func (FindPeerCommand) CommandName() string { return "find_peer" }
func (FindPeerCommand) isCommand()          {}
