package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wg-hub/pkg/api"
	"wg-hub/pkg/audit"
	"wg-hub/pkg/clash"
	"wg-hub/pkg/config"
	"wg-hub/pkg/dnsd"
	"wg-hub/pkg/version"
	"wg-hub/pkg/wgconf"
	"wg-hub/pkg/wgtool"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.APIAddr, "HTTP listen address")
	noDNS := flag.Bool("no-dns", false, "disable the embedded DNS server")
	flag.Parse()

	registry := wgconf.NewRegistry(cfg.WGConfigPath, cfg.VPNNetwork, cfg.ServerIP)
	tool := wgtool.New(cfg.WGInterface)
	clashParser := clash.NewParser(cfg.ClashConfigPath)

	auditLog, err := audit.Open(cfg.AuditDBPath)
	if err != nil {
		log.Printf("audit log disabled: %v", err)
		auditLog = nil
	} else {
		defer auditLog.Close()
	}

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, api.Deps{
		Settings: cfg,
		Registry: registry,
		Tool:     tool,
		Clash:    clashParser,
		Audit:    auditLog,
	})

	var dnsServer *dnsd.Server
	if !*noDNS {
		resolver := dnsd.NewResolver(registry, cfg.DNSDomainSuffix)
		dnsServer = dnsd.NewServer(cfg.DNSListenAddr, cfg.DNSPort, resolver)
		if err := dnsServer.Start(); err != nil {
			log.Fatalf("dns server failed to start on %s:%d: %v", cfg.DNSListenAddr, cfg.DNSPort, err)
		}
		log.Printf("dns server listening on %s:%d for *%s", cfg.DNSListenAddr, cfg.DNSPort, cfg.DNSDomainSuffix)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("wg-hub %s listening on %s (interface %s, config %s)",
			version.Build, *addr, cfg.WGInterface, cfg.WGConfigPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Printf("shutting down")
	if dnsServer != nil {
		dnsServer.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
