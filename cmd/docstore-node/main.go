// Package main 提供 docstore 节点命令行入口
//
// 使用方法:
//
//	docstore-node -preset client -bootstrap /dns4/relay.example.com/tcp/4001/p2p/12D3KooW...
//	echo "hello" | docstore-node -stdin
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-docstore"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("cmd/docstore-node")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := newCLIFlags("docstore-node")
	if err := flags.parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.showVersion {
		fmt.Println(docstore.VersionInfo())
		return nil
	}

	if err := loadDotEnv(flags.envFile); err != nil {
		return fmt.Errorf("加载 %s 失败: %w", flags.envFile, err)
	}

	level := flags.logLevel
	if level == "" {
		level = os.Getenv(log.EnvLogLevel)
	}
	log.SetLevel(log.ParseLevel(level))

	cfg, err := flags.buildConfig(os.LookupEnv)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("📦 %s\n", docstore.VersionInfo())
	node, err := docstore.Start(ctx, docstore.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	printNodeInfo(node)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return printEvents(gctx, node) })
	if flags.publishStdin {
		g.Go(func() error { return publishLines(gctx, node, os.Stdin) })
	}
	if flags.findPeer != "" {
		if err := node.FindPeer(ctx, types.PeerID(flags.findPeer)); err != nil {
			logger.Warn("发起查找失败", "target", flags.findPeer, "error", err)
		}
	}
	g.Go(func() error {
		<-gctx.Done()
		fmt.Println("\n正在关闭节点...")
		return node.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// printEvents 打印领域事件直到节点关闭
func printEvents(ctx context.Context, node *docstore.Node) error {
	for {
		ev, err := node.NextEvent(ctx)
		if err != nil {
			if errors.Is(err, docstore.ErrNodeClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		printEvent(ev)
	}
}

func printEvent(ev types.DomainEvent) {
	switch e := ev.(type) {
	case types.MessageReceived:
		fmt.Printf("📨 收到更新 [%s] 来自 %s: %s\n", e.Topic, e.Source.ShortString(), e.Data)
	case types.MessagePublished:
		fmt.Printf("📤 已发布 %s\n", e.ID)
	case types.Connected:
		fmt.Printf("✓ 已连接 %s (%s)\n", e.Peer.ShortString(), e.Endpoint)
	case types.Disconnected:
		fmt.Printf("✗ 已断开 %s\n", e.Peer.ShortString())
	case types.PeerDiscovered:
		fmt.Printf("🔎 发现节点 %s %v\n", e.Peer.ShortString(), e.Endpoints)
	case types.Error:
		fmt.Printf("⚠️  %s\n", e)
	default:
		fmt.Printf("%s: %+v\n", ev.Kind(), ev)
	}
}

// publishLines 逐行发布
func publishLines(ctx context.Context, node *docstore.Node, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := node.Publish(ctx, append([]byte(nil), line...)); err != nil {
			if errors.Is(err, docstore.ErrNodeClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return scanner.Err()
}

func printNodeInfo(node *docstore.Node) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Printf("║ 节点 ID: %s\n", node.ID())
	fmt.Printf("║ 角色:    %s\n", roleLabel(node.Role()))
	fmt.Println("║ 监听地址:")
	for _, addr := range node.ListenAddrs() {
		fmt.Printf("║   • %s/p2p/%s\n", addr, node.ID())
	}
	if addr := node.IntrospectAddr(); addr != "" {
		fmt.Printf("║ 自省服务: http://%s/debug/introspect\n", addr)
	}
	fmt.Println("╚══════════════════════════════════════════════════════╝")
	fmt.Println("节点已启动，按 Ctrl+C 退出")
}
