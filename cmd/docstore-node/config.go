package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dep2p/go-docstore"
	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/pkg/types"
)

// cliFlags 命令行参数
//
// 优先级：命令行 > 环境变量（含 .env）> 配置文件 > 默认值。
type cliFlags struct {
	fs *flag.FlagSet

	configFile    string
	envFile       string
	preset        string
	identityFile  string
	ephemeral     bool
	bootstrap     string
	signalingPort int
	listen        string
	introspect    string
	logFile       string
	logLevel      string

	publishStdin bool
	findPeer     string
	showVersion  bool
}

func newCLIFlags(name string) *cliFlags {
	f := &cliFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	fs := f.fs

	fs.StringVar(&f.configFile, "config", "", "JSON 配置文件路径")
	fs.StringVar(&f.envFile, "env-file", ".env", "环境变量文件（不存在时忽略）")
	fs.StringVar(&f.preset, "preset", "", "预设 (client/relay/full)")
	fs.StringVar(&f.identityFile, "identity", "", "身份密钥文件路径")
	fs.BoolVar(&f.ephemeral, "ephemeral", false, "使用临时身份，不读写密钥文件")
	fs.StringVar(&f.bootstrap, "bootstrap", "", "种子节点 multiaddr，逗号分隔")
	fs.IntVar(&f.signalingPort, "signaling-port", 0, "WebRTC-direct UDP 端口")
	fs.StringVar(&f.listen, "listen", "", "只监听这些 multiaddr，逗号分隔")
	fs.StringVar(&f.introspect, "introspect", "", "启用自省服务并监听该地址")
	fs.StringVar(&f.logFile, "log", "", "日志文件路径")
	fs.StringVar(&f.logLevel, "log-level", "", "日志级别 (debug/info/warn/error)")

	fs.BoolVar(&f.publishStdin, "stdin", false, "将标准输入的每一行作为文档更新发布")
	fs.StringVar(&f.findPeer, "find", "", "启动后查找该节点")
	fs.BoolVar(&f.showVersion, "version", false, "显示版本信息")
	return f
}

func (f *cliFlags) parse(args []string) error {
	return f.fs.Parse(args)
}

func (f *cliFlags) isSet(name string) bool {
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// loadDotEnv 加载 .env，已存在的环境变量不被覆盖
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// buildConfig 按优先级合成配置
func (f *cliFlags) buildConfig(lookup config.LookupFunc) (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.LoadFile(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, fmt.Errorf("环境变量: %w", err)
	}

	if f.isSet("preset") {
		p, err := docstore.PresetByName(f.preset)
		if err != nil {
			return nil, err
		}
		p.Apply(cfg)
	}
	if f.isSet("identity") {
		cfg.Identity.KeyFile = f.identityFile
		cfg.Identity.Ephemeral = false
	}
	if f.ephemeral {
		cfg.Identity.Ephemeral = true
		cfg.Identity.KeyFile = ""
	}
	if f.isSet("bootstrap") {
		cfg.Discovery.BootstrapPeers = config.SplitList(f.bootstrap)
	}
	if f.isSet("signaling-port") {
		cfg.Transport.SignalingPort = f.signalingPort
	}
	if f.isSet("listen") {
		cfg.Transport.EnableTCP = false
		cfg.Transport.EnableQUIC = false
		cfg.Transport.EnableWebRTC = false
		cfg.Transport.ExtraListenAddrs = config.SplitList(f.listen)
	}
	if f.introspect != "" {
		cfg.Diagnostics.EnableIntrospect = true
		cfg.Diagnostics.IntrospectAddr = f.introspect
	}
	if f.logFile != "" {
		cfg.LogFile = f.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// roleLabel 用于输出的角色名
func roleLabel(r types.Role) string {
	switch r {
	case types.RoleClient:
		return "客户端"
	case types.RoleRelay:
		return "中继"
	default:
		return "全节点"
	}
}
