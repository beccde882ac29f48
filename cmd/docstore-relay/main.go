// Package main 提供独立的 docstore 中继服务器
//
// 中继服务器是公网可达的常驻节点：应答路由查询，为 NAT 后的客户端
// 转发流量，并作为种子节点供其他节点引导。
//
// 使用方法:
//
//	docstore-relay -identity /var/lib/docstore/identity.key -signaling-port 9090
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-docstore"
	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/pkg/lib/log"
)

var logger = log.Logger("cmd/docstore-relay")

func main() {
	if err := run(); err != nil {
		fmt.Printf("❌ 错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	identity := flag.String("identity", "", "身份密钥文件路径")
	signalingPort := flag.Int("signaling-port", 0, "WebRTC-direct UDP 端口（0 = 使用环境变量或默认值）")
	tcpPort := flag.Int("port", 4001, "TCP / QUIC 监听端口")
	maxConns := flag.Int("max-conns", 512, "最大连接数")
	introspect := flag.String("introspect", "", "启用自省服务并监听该地址")
	statsEvery := flag.Duration("stats", 30*time.Second, "统计报告间隔")
	flag.Parse()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("加载 .env 失败: %w", err)
		}
	}
	log.SetLevel(log.ParseLevel(os.Getenv(log.EnvLogLevel)))

	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Println("║            docstore Relay Server                     ║")
	fmt.Println("╚══════════════════════════════════════════════════════╝")
	fmt.Println()

	cfg := config.NewConfig()
	docstore.PresetRelay.Apply(cfg)
	if err := cfg.ApplyEnv(nil); err != nil {
		return err
	}
	cfg.Transport.TCPPort = *tcpPort
	cfg.Transport.QUICPort = *tcpPort
	if *signalingPort > 0 {
		cfg.Transport.SignalingPort = *signalingPort
	}
	if *identity != "" {
		cfg.Identity.KeyFile = *identity
	}
	if *maxConns > 0 {
		cfg.ConnMgr.HighWater = *maxConns
		cfg.ConnMgr.LowWater = *maxConns / 4
	}
	if *introspect != "" {
		cfg.Diagnostics.EnableIntrospect = true
		cfg.Diagnostics.IntrospectAddr = *introspect
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	node, err := docstore.Start(ctx, docstore.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动中继服务器失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	printServerInfo(node)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reportStats(gctx, node, *statsEvery)
		return nil
	})
	g.Go(func() error { return drainEvents(gctx, node) })
	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\n正在关闭中继服务器...")
		return node.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("再见! 👋")
	return nil
}

// drainEvents 消费事件队列，只记录日志
func drainEvents(ctx context.Context, node *docstore.Node) error {
	for {
		ev, err := node.NextEvent(ctx)
		if err != nil {
			if errors.Is(err, docstore.ErrNodeClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		logger.Debug("领域事件", "kind", string(ev.Kind()))
	}
}

// printServerInfo 打印服务器信息
func printServerInfo(node *docstore.Node) {
	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Println("║                    服务器信息                         ║")
	fmt.Println("╠══════════════════════════════════════════════════════╣")
	fmt.Printf("║ 节点 ID: %s\n", node.ID())
	fmt.Println("║")
	fmt.Println("║ 监听地址:")
	for _, addr := range node.ListenAddrs() {
		fmt.Printf("║   • %s\n", addr)
	}
	if addr := node.IntrospectAddr(); addr != "" {
		fmt.Printf("║ 自省服务: http://%s/debug/introspect\n", addr)
	}
	fmt.Println("╚══════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Println("客户端可以使用以下地址作为种子节点 (BOOTSTRAP_PEERS):")
	for _, addr := range node.ListenAddrs() {
		fmt.Printf("  %s/p2p/%s\n", addr, node.ID())
	}
	fmt.Println()
	fmt.Println("按 Ctrl+C 停止服务器")
}

// reportStats 定期报告统计信息
func reportStats(ctx context.Context, node *docstore.Node, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := node.Snapshot()
			bw := node.BandwidthTotals()
			fmt.Printf("[Stats] 连接: %d  已发现: %d  中继: %d  入站: %d B  出站: %d B\n",
				len(snap.Connected), len(snap.Discovered), len(snap.ActiveRelays),
				bw.TotalIn, bw.TotalOut)
		}
	}
}
