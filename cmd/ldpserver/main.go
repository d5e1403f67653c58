// Command ldpserver runs the protocol core as a standalone HTTP server,
// wiring configuration, logging, the storage collaborators, and the Echo
// transport together the way the teacher's cli/root.go wires RabbitMQ,
// CouchDB, and the JWT service into runServer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trellis-ldp/ldpcore/internal/accesscontrol"
	"github.com/trellis-ldp/ldpcore/internal/agent"
	"github.com/trellis-ldp/ldpcore/internal/config"
	"github.com/trellis-ldp/ldpcore/internal/localcache"
	"github.com/trellis-ldp/ldpcore/internal/logging"
	"github.com/trellis-ldp/ldpcore/internal/store/memstore"
	"github.com/trellis-ldp/ldpcore/internal/store/pgstore"
	"github.com/trellis-ldp/ldpcore/internal/store/s3store"
	"github.com/trellis-ldp/ldpcore/internal/store/uploadsession"
	"github.com/trellis-ldp/ldpcore/internal/transport"
	"github.com/trellis-ldp/ldpcore/internal/version"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/handlers"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/idmap"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/multipart"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/services"
	"github.com/trellis-ldp/ldpcore/pkg/ldp/session"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ldpserver",
	Short: "Serve an LDP/Memento/WebAC repository over HTTP",
	Run:   runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	resources, err := newResourceService(cfg)
	if err != nil {
		logger.Fatalf("failed to initialize resource store: %v", err)
	}

	cache, err := localcache.Open(cfg.Cache.Path)
	if err != nil {
		logger.Fatalf("failed to open local cache: %v", err)
	}

	binaries, backend, err := newBinaryServices(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to initialize binary store: %v", err)
	}

	tracker, err := uploadsession.New(redisURL(cfg.Redis))
	if err != nil {
		logger.Fatalf("failed to connect to upload session store: %v", err)
	}

	agents, err := agent.New(context.Background(), agent.Config{
		OIDCProviderURL: cfg.Auth.OIDCIssuer,
		OIDCClientID:    cfg.Auth.OIDCClientID,
		LocalSecret:     cfg.Auth.JWTSecret,
		LocalIssuer:     cfg.Auth.JWTIssuer,
	})
	if err != nil {
		logger.Fatalf("failed to initialize agent resolver: %v", err)
	}

	acl := accesscontrol.New(resources)
	authz := &session.Authorizer{Agents: agents, ACL: acl}
	mapper := idmap.New(cfg.Repository.BaseURL)

	h := &handlers.Handlers{
		Resources: resources,
		Binaries:  binaries,
		// IO and Constraints are left for a deployment to supply: per the
		// collaborator-interface boundary (§6), this repository does not
		// ship a concrete RDF syntax implementation or shape validator.
		Auth:   authz,
		Mapper: mapper,
		Now:    time.Now,
	}
	upload := &multipart.Engine{Tracker: tracker, Backend: backend}

	transportCfg := transport.Config{
		Port:            cfg.Server.Port,
		Debug:           cfg.Server.Debug,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	e := transport.New(transportCfg, logger)
	transport.RegisterRoutes(e, h, upload, authz, mapper, cfg.Repository.Partitions, version.Current())

	go func() {
		logger.Infof("listening on port %d", cfg.Server.Port)
		if err := transport.Start(e, transportCfg); err != nil {
			logger.Infof("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := transport.Shutdown(e, cfg.Server.ShutdownTimeout); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	_ = cache.Close()
}

// newResourceService picks pgstore when a database DSN is configured,
// falling back to the in-memory reference store for local development.
func newResourceService(cfg *config.All) (services.ResourceService, error) {
	if cfg.Database.DSN != "" {
		return pgstore.Open(cfg.Database.DSN)
	}
	return memstore.New(), nil
}

// newBinaryServices builds the S3 client the way storage/s3aws.go does —
// LoadDefaultConfig with static credentials and a custom endpoint resolver
// for S3-compatible stores like MinIO — and wraps it in both the
// services.BinaryService and multipart.Backend adapters, which share the
// same underlying client and bucket.
func newBinaryServices(cfg *config.All, logger *logrus.Logger) (services.BinaryService, multipart.Backend, error) {
	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3.UsePathStyle
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = &cfg.S3.Endpoint
		}
	})

	store := s3store.New(client, cfg.S3.Bucket).WithLogger(logger)
	backend := s3store.NewBackend(client, cfg.S3.Bucket)
	return store, backend, nil
}

// redisURL builds the redis:// connection string uploadsession.New expects
// from the discrete host/password/db config fields a deployment sets.
func redisURL(cfg config.Redis) string {
	if cfg.Password != "" {
		return fmt.Sprintf("redis://:%s@%s/%d", cfg.Password, cfg.Addr, cfg.DB)
	}
	return fmt.Sprintf("redis://%s/%d", cfg.Addr, cfg.DB)
}
