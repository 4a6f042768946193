// Command syncctl mirrors upstream resources into the database once and
// exits.
//
//	syncctl --resource people --resource films
//	syncctl --all
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/iliyamo/swapi-mirror/internal/config"
	"github.com/iliyamo/swapi-mirror/internal/database"
	"github.com/iliyamo/swapi-mirror/internal/logger"
	"github.com/iliyamo/swapi-mirror/internal/model"
	"github.com/iliyamo/swapi-mirror/internal/repository"
	"github.com/iliyamo/swapi-mirror/internal/service"
	"github.com/iliyamo/swapi-mirror/internal/swapi"
)

func main() {
	var (
		resources []string
		all       bool
		baseURL   string
		timeout   time.Duration
		publish   bool
		envFile   string
		logLevel  string
	)
	flag.StringArrayVarP(&resources, "resource", "r", nil, "resource to sync (repeatable)")
	flag.BoolVar(&all, "all", false, "sync every resource")
	flag.StringVar(&baseURL, "base-url", "", "upstream root (default $SWAPI_BASE_URL or "+config.DefaultSwapiBaseURL+")")
	flag.DurationVar(&timeout, "timeout", 0, "per page timeout (default $SWAPI_TIMEOUT)")
	flag.BoolVar(&publish, "publish", false, "publish sync events to $RABBITMQ_URL")
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	flag.StringVar(&logLevel, "log-level", "warning", "log level")
	flag.Parse()

	logger.Init(logLevel, os.Stderr)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", envFile, err)
		os.Exit(2)
	}

	kinds, err := selectKinds(resources, all)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	syncCfg := config.LoadSyncConfig()
	if baseURL != "" {
		syncCfg.BaseURL = baseURL
	}
	if timeout > 0 {
		syncCfg.Timeout = timeout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dbc := config.LoadDB()
	db, err := database.Open(dbc.User, dbc.Pass, dbc.Host, dbc.Port, dbc.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	var events service.EventPublisher
	if publish {
		if p := service.NewSyncPublisher(config.RabbitURL()); p != nil {
			events = p
		}
	}
	syncer := service.NewSynchronizer(swapi.NewClient(syncCfg.BaseURL, syncCfg.Timeout),
		repository.NewResourceRepo(db), events)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tUPSTREAM\tUPSERTED\tSTATUS")
	failed := false
	for _, k := range kinds {
		res, err := syncer.Sync(ctx, string(k))
		if err != nil {
			failed = true
			fmt.Fprintf(tw, "%s\t-\t-\t%v\n", k, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\tok\n", k, res.TotalUpstream, res.TotalUpserted)
	}
	_ = tw.Flush()
	if failed {
		os.Exit(1)
	}
}

// selectKinds validates the requested resources, keeping their order and
// dropping repeats.
func selectKinds(names []string, all bool) ([]model.Kind, error) {
	if all {
		if len(names) > 0 {
			return nil, errors.New("--all and --resource are mutually exclusive")
		}
		return model.Kinds, nil
	}
	if len(names) == 0 {
		return nil, errors.New("nothing to sync: pass --resource or --all")
	}
	seen := make(map[model.Kind]bool, len(names))
	var kinds []model.Kind
	for _, n := range names {
		k, ok := model.ParseKind(n)
		if !ok {
			return nil, fmt.Errorf("unknown resource %q", n)
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}
