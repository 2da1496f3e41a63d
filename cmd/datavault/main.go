package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/andreazorzetto/yh/highlight"
	"github.com/hokaccha/go-prettyjson"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gopkg.in/yaml.v3"

	sdk "go.opentelemetry.io/otel/sdk/metric"

	"github.com/looplj/datavault/conf"
	"github.com/looplj/datavault/internal/build"
	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/metrics"
	"github.com/looplj/datavault/internal/oracle"
	"github.com/looplj/datavault/internal/server"
	"github.com/looplj/datavault/internal/server/snapshot"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			handleConfigCommand()
			return
		case "version", "--version", "-v":
			showVersion()
			return
		case "help", "--help", "-h":
			showHelp()
			return
		case "build-info":
			showBuildInfo()
			return
		}
	}

	startServer()
}

func showBuildInfo() {
	fmt.Println(build.GetBuildInfo())
}

type logger struct{}

func (l *logger) LogEvent(event fxevent.Event) {
	log.Debug(context.Background(), "fx event", log.Any("event", event))
}

func startServer() {
	server.Run(
		fx.WithLogger(func() fxevent.Logger {
			return &logger{}
		}),
		fx.Provide(conf.Load),
		fx.Provide(metrics.NewProvider),
		fx.Invoke(func(lc fx.Lifecycle, server *server.Server, provider *sdk.MeterProvider) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if provider != nil {
						return metrics.SetupMetrics(provider, server.Config.Name)
					}

					return nil
				},
				OnStop: func(ctx context.Context) error {
					if provider != nil {
						return provider.Shutdown(ctx)
					}

					return nil
				},
			})
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go func() {
						err := server.Run()
						if err != nil {
							log.Error(context.Background(), "server run error:", log.Cause(err))
							os.Exit(1)
						}
					}()

					return nil
				},
				OnStop: func(ctx context.Context) error {
					err := server.Shutdown(ctx)
					if err != nil {
						log.Error(context.Background(), "server shutdown error:", log.Cause(err))
					}

					return nil
				},
			})
		}),
	)
}

func handleConfigCommand() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: datavault config <preview|validate|get>")
		os.Exit(1)
	}

	switch os.Args[2] {
	case "preview":
		configPreview()
	case "validate":
		configValidate()
	case "get":
		configGet()
	default:
		fmt.Println("Usage: datavault config <preview|validate|get>")
		os.Exit(1)
	}
}

func configPreview() {
	format := "yml"

	for i := 3; i < len(os.Args); i++ {
		if os.Args[i] == "--format" || os.Args[i] == "-f" {
			if i+1 < len(os.Args) {
				format = os.Args[i+1]
			}
		}
	}

	config, err := conf.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var output string

	switch format {
	case "json":
		b, err := prettyjson.Marshal(config)
		if err != nil {
			fmt.Printf("Failed to preview config: %v\n", err)
			os.Exit(1)
		}

		output = string(b)
	case "yml", "yaml":
		b, err := yaml.Marshal(config)
		if err != nil {
			fmt.Printf("Failed to preview config: %v\n", err)
			os.Exit(1)
		}

		output, err = highlight.Highlight(bytes.NewBuffer(b))
		if err != nil {
			fmt.Printf("Failed to preview config: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unsupported format: %s\n", format)
		os.Exit(1)
	}

	fmt.Println(output)
}

func configValidate() {
	config, err := conf.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	errors := validateConfig(config)

	if len(errors) == 0 {
		fmt.Println("Configuration is valid!")
		return
	}

	fmt.Println("Configuration validation failed:")

	for _, err := range errors {
		fmt.Printf("  - %s\n", err)
	}

	os.Exit(1)
}

func validateConfig(config conf.Config) []string {
	var errors []string

	if config.APIServer.Port <= 0 || config.APIServer.Port > 65535 {
		errors = append(errors, "server.port must be between 1 and 65535")
	}

	if config.Log.Name == "" {
		errors = append(errors, "log.name cannot be empty")
	}

	if config.APIServer.CORS.Enabled && len(config.APIServer.CORS.AllowedOrigins) == 0 {
		errors = append(errors, "server.cors.allowed_origins cannot be empty when CORS is enabled")
	}

	if config.Auth.JWTSecret == "" {
		errors = append(errors, "auth.jwt_secret cannot be empty")
	}

	if config.Oracle.Type == oracle.TypeHTTP && config.Oracle.BaseURL == "" {
		errors = append(errors, "oracle.base_url cannot be empty when oracle.type is http")
	}

	if config.Snapshot.Enabled {
		switch config.Snapshot.Storage.Type {
		case snapshot.StorageS3:
			if config.Snapshot.Storage.S3.BucketName == "" {
				errors = append(errors, "snapshot.storage.s3.bucket_name cannot be empty")
			}
		case snapshot.StorageGCS:
			if config.Snapshot.Storage.GCS.BucketName == "" {
				errors = append(errors, "snapshot.storage.gcs.bucket_name cannot be empty")
			}
		case snapshot.StorageWebDAV:
			if config.Snapshot.Storage.WebDAV.URL == "" {
				errors = append(errors, "snapshot.storage.webdav.url cannot be empty")
			}
		}
	}

	return errors
}

func configGet() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: datavault config get <key>")
		fmt.Println("")
		fmt.Println("Available keys:")
		fmt.Println("  server.port              Server port number")
		fmt.Println("  server.name              Server name")
		fmt.Println("  oracle.type              Access oracle type")
		fmt.Println("  oracle.base_url          Access oracle base URL")
		fmt.Println("  snapshot.enabled         Whether snapshots are enabled")
		fmt.Println("  snapshot.storage.type    Snapshot storage backend")
		os.Exit(1)
	}

	key := os.Args[3]

	config, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var value any

	switch key {
	case "server.port":
		value = config.APIServer.Port
	case "server.name":
		value = config.APIServer.Name
	case "server.base_path":
		value = config.APIServer.BasePath
	case "server.debug":
		value = config.APIServer.Debug
	case "oracle.type":
		value = config.Oracle.Type
	case "oracle.base_url":
		value = config.Oracle.BaseURL
	case "analytics.gdpr_threshold":
		value = config.Analytics.GDPRThreshold
	case "entries.put_policy":
		value = config.Entries.PutPolicy
	case "snapshot.enabled":
		value = config.Snapshot.Enabled
	case "snapshot.storage.type":
		value = config.Snapshot.Storage.Type
	default:
		fmt.Fprintf(os.Stderr, "Unknown config key: %s\n", key)
		os.Exit(1)
	}

	fmt.Println(value)
}

func showHelp() {
	fmt.Println("DataVault governed dataset store")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  datavault                    Start the server (default)")
	fmt.Println("  datavault config preview     Preview configuration")
	fmt.Println("  datavault config validate    Validate configuration")
	fmt.Println("  datavault config get <key>   Get a specific config value")
	fmt.Println("  datavault version            Show version")
	fmt.Println("  datavault build-info         Show build information")
	fmt.Println("  datavault help               Show this help message")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -f, --format FORMAT       Output format for config preview (yml, json)")
}

func showVersion() {
	fmt.Println(build.Version)
}
