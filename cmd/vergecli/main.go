package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"github.com/weemen/vergeclient/pkg/log"
	"github.com/weemen/vergeclient/pkg/rpc"
	"github.com/weemen/vergeclient/pkg/wallet"
)

const metricsEndpoint = "/metrics"

func main() {
	os.Exit(run())
}

func run() int {
	bootstrap := log.NewZapLogger(log.Config{Level: log.LevelWarn})
	cfg, err := LoadConfig(bootstrap)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err.Error())
		return 1
	}

	logger := log.NewZapLogger(cfg.Log).WithName("vergecli")

	var metrics *rpc.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics = rpc.NewMetricsWithRegistry(reg)

		metricsServer := startMetricsServer(cfg.MetricsAddr, reg, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("failed to shut down metrics server", "error", err)
			}
		}()
	}

	adapter, closeAdapter, err := newAdapter(context.Background(), cfg, logger, metrics)
	if err != nil {
		fmt.Printf("Failed to set up wallet connection: %s\n", err.Error())
		return 1
	}
	defer closeAdapter()

	client := wallet.NewClient(adapter, wallet.WithLogger(logger))
	operator := NewOperator(adapter, client, os.Stdout, cfg.CallTimeout)

	if len(os.Args) > 1 {
		if err := operator.Run(context.Background(), os.Args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
			return 1
		}
		return 0
	}

	runPrompt(operator)
	return 0
}

// newAdapter connects the configured transport. The returned func releases
// it.
func newAdapter(ctx context.Context, cfg *Config, logger log.Logger, metrics *rpc.Metrics) (*rpc.Adapter, func(), error) {
	opts := []rpc.AdapterOption{rpc.WithMetrics(metrics)}

	switch cfg.Transport {
	case TransportWebsocket:
		stream, err := rpc.NewStreamTransport(cfg.RPCURL, rpc.StreamConfig{
			HandshakeTimeout: cfg.Timeout,
			WriteTimeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := stream.Dial(ctx); err != nil {
			return nil, nil, err
		}
		closeStream := func() {
			if err := stream.Close(); err != nil {
				logger.Warn("failed to close websocket", "error", err)
			}
		}
		return rpc.NewStreamAdapter(stream, logger, opts...), closeStream, nil
	default:
		userID, err := cfg.CorrelationID()
		if err != nil {
			return nil, nil, err
		}
		adapter, err := rpc.NewHTTPAdapter(rpc.NewHTTPClient(cfg.Timeout), cfg.RPCURL, logger, userID, opts...)
		if err != nil {
			return nil, nil, err
		}
		return adapter, func() {}, nil
	}
}

func startMetricsServer(addr string, reg *prometheus.Registry, logger log.Logger) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle(metricsEndpoint, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	metricsServer := &http.Server{
		Addr:              addr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Prometheus metrics available", "listenAddr", addr, "endpoint", metricsEndpoint)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failure", "error", err)
		}
	}()
	return metricsServer
}

func runPrompt(operator *Operator) {
	initialState, _ := term.GetState(int(os.Stdin.Fd()))
	handleExit := func() {
		if initialState != nil {
			_ = term.Restore(int(os.Stdin.Fd()), initialState)
		}
		_ = exec.Command("stty", "sane").Run()
	}

	options := append(getStyleOptions(),
		prompt.OptionPrefix("verge> "),

		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(buf *prompt.Buffer) {
				fmt.Println("Exiting Verge CLI.")
				handleExit()
				os.Exit(0)
			},
		}),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn:  func(buf *prompt.Buffer) {},
		}),
	)
	p := prompt.New(
		operator.Execute,
		operator.Complete,
		options...,
	)

	promptExitCh := make(chan struct{})
	go func() {
		p.Run()
		close(promptExitCh)
	}()

	select {
	case <-operator.Wait():
	case <-promptExitCh:
	}
	handleExit()
	fmt.Println("Exiting Verge CLI.")
}

func getStyleOptions() []prompt.Option {
	return []prompt.Option{
		prompt.OptionTitle("Verge CLI"),
		prompt.OptionPrefixTextColor(prompt.Yellow),
		prompt.OptionPreviewSuggestionTextColor(prompt.Cyan),

		prompt.OptionSuggestionTextColor(prompt.White),
		prompt.OptionSuggestionBGColor(prompt.DarkBlue),

		prompt.OptionDescriptionTextColor(prompt.Black),
		prompt.OptionDescriptionBGColor(prompt.Yellow),

		prompt.OptionSelectedSuggestionTextColor(prompt.Black),
		prompt.OptionSelectedSuggestionBGColor(prompt.Yellow),

		prompt.OptionSelectedDescriptionTextColor(prompt.White),
		prompt.OptionSelectedDescriptionBGColor(prompt.DarkBlue),

		prompt.OptionShowCompletionAtStart(),
	}
}
