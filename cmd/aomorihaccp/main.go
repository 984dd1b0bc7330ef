package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/config"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/server"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/session"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/storage"
	"github.com/079jsgsw079-cmyk/aomorihaccp/internal/util"
)

var (
	port    = flag.Int("port", 0, "待受ポート (config.toml に明示指定がある場合はそちらを優先)")
	devMode = flag.Bool("dev", false, "開発モード")
	dataDir = flag.String("dataDir", "", "保存データディレクトリ (設定ファイルを上書き)")
	kbDir   = flag.String("kbDir", "", "参照データディレクトリ (内蔵CSVを差し替え)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  あおもりHACCP - 臨時営業 衛生管理記録")
	fmt.Println("==========================================")

	// 設定を読む
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("設定の読込失敗、既定値で続行: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// コマンドライン引数による上書き
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *kbDir != "" {
		cfg.KB.Dir = *kbDir
	}

	// 保存データディレクトリを用意する
	resolvedDataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Fatalf("データディレクトリの作成失敗: %v", err)
	}
	fmt.Printf("データディレクトリ: %s\n", resolvedDataDir)

	// 永続化とセッションの配線
	st, err := storage.New(resolvedDataDir)
	if err != nil {
		log.Fatalf("ストレージの初期化失敗: %v", err)
	}
	sess := session.New(st)

	if err := sess.LoadState(); err != nil {
		log.Printf("保存データの読込失敗、空の状態で開始: %v", err)
	}

	// 参照データは起動を待たせない
	go sess.LoadKnowledgeBase(cfg.KB.Dir)

	// サーバ作成
	srv := server.NewServer(cfg, sess)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	// サーバ起動
	go func() {
		fmt.Printf("サービス起動中、ポート %d で待受...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("サービス起動失敗: %v", err)
		}
	}()

	// ブラウザを開く
	if !cfg.Server.DevMode {
		fmt.Printf("ブラウザを開いています: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("自動で開けませんでした。手動でアクセスしてください: %s\n", url)
		}
	} else {
		fmt.Printf("開発モード: %s にアクセスしてください\n", url)
	}

	fmt.Println("\nCtrl+C で停止します...")

	// シグナル待ち
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nサービスを終了しています...")
	if err := srv.SaveNow(); err != nil {
		log.Printf("終了前の保存失敗: %v", err)
	}
}
