package main

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/http2"

	"github.com/weiwangfds/fontbase/config"
	"github.com/weiwangfds/fontbase/internal/database"
	"github.com/weiwangfds/fontbase/internal/fontparse"
	"github.com/weiwangfds/fontbase/internal/logger"
	"github.com/weiwangfds/fontbase/internal/middleware"
	"github.com/weiwangfds/fontbase/internal/router"
	scannerservice "github.com/weiwangfds/fontbase/internal/service/scanner"
	watcherservice "github.com/weiwangfds/fontbase/internal/service/watcher"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(&logger.Config{
		Level:    cfg.Logger.Level,
		Format:   cfg.Logger.Format,
		Output:   cfg.Logger.Output,
		FilePath: cfg.Logger.FilePath,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化中间件
	loggerMiddleware := middleware.NewLoggerMiddleware()

	// 初始化扫描和监听服务
	parser := fontparse.NewParser()
	scannerService := scannerservice.NewScannerService(db, parser, cfg.Scanner)
	fontWatcher := watcherservice.NewFontWatcherService(db, scannerService, cfg.Scanner.WatchDebounceMs)

	// 初始化路由
	r := router.NewRouter(loggerMiddleware, db, cfg, scannerService, fontWatcher)

	// 启动目录监听服务
	watcherCtx, cancelWatcher := context.WithCancel(context.Background())
	if err := fontWatcher.Start(watcherCtx); err != nil {
		log.Printf("Failed to start font watcher service: %v", err)
	}

	// 启动时在后台执行一次全量扫描，追平离线期间的文件变化
	go scannerService.ScanAll()

	// 创建HTTP/HTTPS服务器
	var srv *http.Server
	if cfg.Server.EnableHTTPS {
		srv = &http.Server{
			Addr:         ":" + strconv.Itoa(cfg.Server.HTTPSPort),
			Handler:      r.GetEngine(),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			TLSConfig: &tls.Config{
				NextProtos: []string{"h2", "http/1.1"}, // 支持HTTP/2和HTTP/1.1
			},
		}

		// 如果启用HTTP/2，配置HTTP/2支持
		if cfg.Server.EnableHTTP2 {
			if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
				log.Fatalf("Failed to configure HTTP/2: %v", err)
			}
		}

		go func() {
			log.Printf("HTTPS server listening on port %d (HTTP/2: %v)", cfg.Server.HTTPSPort, cfg.Server.EnableHTTP2)
			if err := srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile); err != nil && err != http.ErrServerClosed {
				log.Fatalf("HTTPS server failed: %v", err)
			}
		}()
	} else {
		srv = &http.Server{
			Addr:         ":" + strconv.Itoa(cfg.Server.Port),
			Handler:      r.GetEngine(),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		}

		go func() {
			log.Printf("HTTP server listening on port %d", cfg.Server.Port)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("HTTP server failed: %v", err)
			}
		}()
	}

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// 停止目录监听服务
	cancelWatcher()
	if err := fontWatcher.Stop(); err != nil {
		log.Printf("Error stopping font watcher service: %v", err)
	}

	// 优雅关闭服务器
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
