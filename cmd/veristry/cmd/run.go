package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	logging "github.com/inconshreveable/log15"
	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"

	"github.com/veristry/veristry/cmd/veristry/common"
	veristrycommon "github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/metrics"
	"github.com/veristry/veristry/lib/network"
	"github.com/veristry/veristry/lib/network/api"
	"github.com/veristry/veristry/lib/network/httpcache"
	"github.com/veristry/veristry/lib/notification"
	"github.com/veristry/veristry/lib/settlement"
	"github.com/veristry/veristry/lib/storage"
	"github.com/veristry/veristry/lib/verification"
)

const defaultBind string = "0.0.0.0:12345"
const defaultLogLevel logging.Lvl = logging.LvlInfo

var (
	flagNetworkID          string = veristrycommon.GetENVValue("VERISTRY_NETWORK_ID", "")
	flagBind               string = veristrycommon.GetENVValue("VERISTRY_BIND", defaultBind)
	flagLogLevel           string = veristrycommon.GetENVValue("VERISTRY_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput          string = veristrycommon.GetENVValue("VERISTRY_LOG_OUTPUT", "")
	flagVerbose            bool   = veristrycommon.GetENVValue("VERISTRY_VERBOSE", "0") == "1"
	flagStorageString      string
	flagTLSCertFile        string = veristrycommon.GetENVValue("VERISTRY_TLS_CERT", "")
	flagTLSKeyFile         string = veristrycommon.GetENVValue("VERISTRY_TLS_KEY", "")
	flagVotingPeriod       string = veristrycommon.GetENVValue("VERISTRY_VOTING_PERIOD", veristrycommon.DefaultVotingPeriod.String())
	flagSweepInterval      string = veristrycommon.GetENVValue("VERISTRY_SWEEP_INTERVAL", veristrycommon.DefaultSweepInterval.String())
	flagSignatureTolerance string = veristrycommon.GetENVValue("VERISTRY_SIGNATURE_TOLERANCE", veristrycommon.DefaultSignatureTolerance.String())
	flagPanelSize          string = veristrycommon.GetENVValue("VERISTRY_PANEL_SIZE", strconv.Itoa(veristrycommon.DefaultPanelSize))
	flagRequiredApprovals  string = veristrycommon.GetENVValue("VERISTRY_REQUIRED_APPROVALS", strconv.Itoa(veristrycommon.DefaultRequiredApprovals))
	flagRateLimit          string = veristrycommon.GetENVValue("VERISTRY_RATE_LIMIT", "")
	flagHTTPCacheAdapter   string = veristrycommon.GetENVValue("VERISTRY_HTTP_CACHE_ADAPTER", "")
	flagWebhookEndpoint    string = veristrycommon.GetENVValue("VERISTRY_WEBHOOK", "")
	flagSettlementEndpoint string = veristrycommon.GetENVValue("VERISTRY_SETTLEMENT_ENDPOINT", "")
)

var (
	serverCmd *cobra.Command

	conf          veristrycommon.Config
	storageConfig *storage.Config
	logLevel      logging.Lvl
	log           logging.Logger
)

func init() {
	var err error

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Run veristry server",
		Run: func(c *cobra.Command, args []string) {
			parseFlagsServer()

			runServer()
			return
		},
	}

	// storage
	var currentDirectory string
	if currentDirectory, err = os.Getwd(); err != nil {
		common.PrintFlagsError(serverCmd, "--storage", err)
	}
	if currentDirectory, err = filepath.Abs(currentDirectory); err != nil {
		common.PrintFlagsError(serverCmd, "--storage", err)
	}
	flagStorageString = veristrycommon.GetENVValue("VERISTRY_STORAGE", fmt.Sprintf("file://%s/db", currentDirectory))

	serverCmd.Flags().StringVar(&flagNetworkID, "network-id", flagNetworkID, "network id")
	serverCmd.Flags().StringVar(&flagBind, "bind", flagBind, "address to listen on")
	serverCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	serverCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	serverCmd.Flags().BoolVar(&flagVerbose, "verbose", flagVerbose, "verbose")
	serverCmd.Flags().StringVar(&flagStorageString, "storage", flagStorageString, "storage uri")
	serverCmd.Flags().StringVar(&flagTLSCertFile, "tls-cert", flagTLSCertFile, "tls certificate file")
	serverCmd.Flags().StringVar(&flagTLSKeyFile, "tls-key", flagTLSKeyFile, "tls key file")
	serverCmd.Flags().StringVar(&flagVotingPeriod, "voting-period", flagVotingPeriod, "panel voting period")
	serverCmd.Flags().StringVar(&flagSweepInterval, "sweep-interval", flagSweepInterval, "deadline sweeper interval")
	serverCmd.Flags().StringVar(&flagSignatureTolerance, "signature-tolerance", flagSignatureTolerance, "allowed age of a vote signature")
	serverCmd.Flags().StringVar(&flagPanelSize, "panel-size", flagPanelSize, "validators per panel")
	serverCmd.Flags().StringVar(&flagRequiredApprovals, "required-approvals", flagRequiredApprovals, "approvals needed for consensus")
	serverCmd.Flags().StringVar(&flagRateLimit, "rate-limit", flagRateLimit, "rate limit: [<ip>=]<limit>-<period>, ex) '100-M' '192.168.0.1=10-S'")
	serverCmd.Flags().StringVar(&flagHTTPCacheAdapter, "http-cache-adapter", flagHTTPCacheAdapter, "http cache adapter: {mem, redis}")
	serverCmd.Flags().StringVar(&flagWebhookEndpoint, "webhook", flagWebhookEndpoint, "webhook endpoint for lifecycle events")
	serverCmd.Flags().StringVar(&flagSettlementEndpoint, "settlement-endpoint", flagSettlementEndpoint, "endpoint to publish terminal decisions to")

	rootCmd.AddCommand(serverCmd)
}

func parseFlagsServer() {
	var err error

	if len(flagNetworkID) < 1 {
		common.PrintFlagsError(serverCmd, "--network-id", errors.New("--network-id must be given"))
	}

	conf = veristrycommon.NewConfig([]byte(flagNetworkID))

	if conf.VotingPeriod, err = time.ParseDuration(flagVotingPeriod); err != nil {
		common.PrintFlagsError(serverCmd, "--voting-period", err)
	}
	if conf.SweepInterval, err = time.ParseDuration(flagSweepInterval); err != nil {
		common.PrintFlagsError(serverCmd, "--sweep-interval", err)
	}
	if conf.SignatureTolerance, err = time.ParseDuration(flagSignatureTolerance); err != nil {
		common.PrintFlagsError(serverCmd, "--signature-tolerance", err)
	}
	if conf.PanelSize, err = strconv.Atoi(flagPanelSize); err != nil {
		common.PrintFlagsError(serverCmd, "--panel-size", err)
	}
	if conf.RequiredApprovals, err = strconv.Atoi(flagRequiredApprovals); err != nil {
		common.PrintFlagsError(serverCmd, "--required-approvals", err)
	}
	if conf.RequiredApprovals < 1 || conf.RequiredApprovals > conf.PanelSize {
		common.PrintFlagsError(serverCmd, "--required-approvals", errors.New("must be between 1 and panel size"))
	}

	if len(flagRateLimit) > 0 {
		if conf.RateLimitRuleAPI, err = veristrycommon.ParseRateLimitRule(flagRateLimit); err != nil {
			common.PrintFlagsError(serverCmd, "--rate-limit", err)
		}
	}

	conf.HTTPCacheAdapter = flagHTTPCacheAdapter

	if storageConfig, err = storage.NewConfigFromString(flagStorageString); err != nil {
		common.PrintFlagsError(serverCmd, "--storage", err)
	}

	if len(flagTLSCertFile) > 0 {
		if _, err = os.Stat(flagTLSCertFile); os.IsNotExist(err) {
			common.PrintFlagsError(serverCmd, "--tls-cert", err)
		}
		if _, err = os.Stat(flagTLSKeyFile); os.IsNotExist(err) {
			common.PrintFlagsError(serverCmd, "--tls-key", err)
		}
	}

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		common.PrintFlagsError(serverCmd, "--log-level", err)
	}

	logHandler := logging.StdoutHandler

	if len(flagLogOutput) < 1 {
		flagLogOutput = "<stdout>"
	} else {
		if logHandler, err = logging.FileHandler(flagLogOutput, logging.JsonFormat()); err != nil {
			common.PrintFlagsError(serverCmd, "--log-output", err)
		}
	}

	logHandler = logging.CallerFileHandler(logHandler)

	log = logging.New("module", "main")
	log.SetHandler(logging.LvlFilterHandler(logLevel, logHandler))
	verification.SetLogging(logLevel, logHandler)
	network.SetLogging(logLevel, logHandler)
	notification.SetLogging(logLevel, logHandler)
	settlement.SetLogging(logLevel, logHandler)

	log.Info("Starting Veristry")

	parsedFlags := []interface{}{}
	parsedFlags = append(parsedFlags, "\n\tnetwork-id", flagNetworkID)
	parsedFlags = append(parsedFlags, "\n\tbind", flagBind)
	parsedFlags = append(parsedFlags, "\n\tstorage", flagStorageString)
	parsedFlags = append(parsedFlags, "\n\tvoting-period", flagVotingPeriod)
	parsedFlags = append(parsedFlags, "\n\tsweep-interval", flagSweepInterval)
	parsedFlags = append(parsedFlags, "\n\tpanel-size", flagPanelSize)
	parsedFlags = append(parsedFlags, "\n\trequired-approvals", flagRequiredApprovals)
	parsedFlags = append(parsedFlags, "\n\tlog-level", flagLogLevel)
	parsedFlags = append(parsedFlags, "\n\tlog-output", flagLogOutput)

	log.Debug("parsed flags:", parsedFlags...)

	if flagVerbose {
		http2.VerboseLogs = true
	}
}

func runServer() {
	metrics.InitPrometheusMetrics()
	metrics.SetVersion()

	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		log.Crit("failed to initialize storage", "error", err)

		os.Exit(1)
	}
	defer st.Close()

	sm := verification.NewStateMachine(st, conf)
	sweeper := verification.NewSweeper(sm, conf.SweepInterval)

	var cacheClient httpcache.CacheClient = httpcache.NewNopClient()
	if len(conf.HTTPCacheAdapter) > 0 {
		adapter, err := httpcache.NewAdapter(conf)
		if err != nil {
			log.Crit("failed to initialize http cache", "error", err)

			os.Exit(1)
		}
		cacheClient, err = httpcache.NewClient(
			httpcache.WithAdapter(adapter),
			httpcache.WithExpire(2*time.Second),
			httpcache.WithLogger(log),
		)
		if err != nil {
			log.Crit("failed to initialize http cache", "error", err)

			os.Exit(1)
		}
	}

	serverConfig := network.NewServerConfig(flagBind)
	serverConfig.TLSCertFile = flagTLSCertFile
	serverConfig.TLSKeyFile = flagTLSKeyFile

	server, err := network.NewServer(serverConfig, conf.RateLimitRuleAPI)
	if err != nil {
		log.Crit("failed to initialize server", "error", err)

		os.Exit(1)
	}

	apiHandler := api.NewNetworkHandlerAPI(sm, st, cacheClient)
	apiHandler.AddAPIHandlers(server.Router())

	notifiers := []notification.Notifier{notification.NewLogNotifier()}
	if len(flagWebhookEndpoint) > 0 {
		client, err := veristrycommon.NewPersistentHTTP2Client(
			10*time.Second, 30*time.Second, true, &veristrycommon.DefaultRetrySetting,
		)
		if err != nil {
			log.Crit("failed to initialize webhook client", "error", err)

			os.Exit(1)
		}
		notifiers = append(notifiers, notification.NewWebhookNotifier(flagWebhookEndpoint, client))
	}

	dispatcher := notification.NewDispatcher(notifiers...)
	dispatcher.Start()
	defer dispatcher.Stop()

	if len(flagSettlementEndpoint) > 0 {
		client, err := veristrycommon.NewPersistentHTTP2Client(
			10*time.Second, 30*time.Second, true, &veristrycommon.DefaultRetrySetting,
		)
		if err != nil {
			log.Crit("failed to initialize settlement client", "error", err)

			os.Exit(1)
		}
		publisher := settlement.NewPublisher(st, flagSettlementEndpoint, client)
		publisher.Start()
		defer publisher.Stop()
	}

	// Execution group.
	var g run.Group
	{
		g.Add(func() error {
			if err := server.Start(); err != nil {
				log.Crit("failed to start server", "error", err)
				return err
			}
			return nil
		}, func(error) {
			server.Stop()
		})
	}
	{
		g.Add(func() error {
			return sweeper.Run()
		}, func(error) {
			sweeper.Stop()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return common.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	if err := g.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
