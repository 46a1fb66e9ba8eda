package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc/reflection"

	vfsrpc "deskvfs/pkg/api/vfsrpc/v1"
	"deskvfs/pkg/app"
	"deskvfs/pkg/config"
	"deskvfs/pkg/logging"
	"deskvfs/pkg/metrics"
	"deskvfs/pkg/server"
	"deskvfs/pkg/service"
)

func main() {
	// 1. Load Config
	cfgFile := flag.String("config", "", "config file (default is $HOME/.vfs/config.yaml)")
	flag.Parse()

	if err := config.Load(*cfgFile); err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}
	if err := logging.Init(logging.Config{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	}); err != nil {
		log.Fatalf("❌ Logger error: %v", err)
	}
	defer logging.Sync()
	logger := logging.Named("server")

	// 2. Init Core Application
	ctx := context.Background()
	application, err := app.NewApp(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to initialize app: %v", err)
	}
	defer application.Close()

	// 启动时水合，请求到来前工作树已就绪
	root, err := application.VFS.Load(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to load desktop: %v", err)
	}
	logger.Info("desktop loaded",
		zap.String("source", application.VFS.Source()),
		zap.String("seed", application.Seeds.Origin()),
		zap.Int("nodes", root.Count()),
	)
	fmt.Println("✅ deskvfs core initialized.")

	// 3. Setup Network
	addr := viper.GetString("server.addr")
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("❌ Failed to listen on %s: %v", addr, err)
	}

	// 4. Setup gRPC Server
	grpcServer := server.NewGRPCServer()
	vfsrpc.RegisterVFSServiceServer(grpcServer, service.NewVFSService(application))

	// Enable Reflection for debugging tools (grpcurl)
	reflection.Register(grpcServer)

	// 5. Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:              viper.GetString("server.metrics_addr"),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	// 6. Start Server (Async)
	go func() {
		fmt.Printf("🚀 gRPC Server listening on %s...\n", addr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("❌ Failed to serve: %v", err)
		}
	}()

	// 7. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n⚠️  Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
	fmt.Println("👋 Server stopped.")
}
