package app

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nichecal/nichecal/internal/config"
	"github.com/nichecal/nichecal/internal/event_bus"
	"github.com/nichecal/nichecal/internal/utils"
	"github.com/nichecal/nichecal/pkg/calendar_date"
	"github.com/nichecal/nichecal/pkg/calendar_page"
	"github.com/nichecal/nichecal/pkg/calendar_view"
	"github.com/nichecal/nichecal/pkg/notify"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	Notifier *notify.BusNotifier
	ToastLog *notify.ToastLog

	Store        calendar_date.Store
	Fetcher      *calendar_date.Fetcher
	MemoryCache  *calendar_date.MemoryResultStore
	RedisClient  *redis.Client
	QueryCache   *calendar_date.QueryCache
	Locales      *calendar_view.Locales
	HtmlRenderer *calendar_view.HtmlRendererImpl
	IcsRenderer  *calendar_view.IcsRendererImpl

	CalendarHandler *calendar_page.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
// db may be nil when the REST backend is configured.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Notifier = notify.NewBusNotifier(deps.EventBus)
	deps.ToastLog = notify.NewToastLog(deps.EventBus, 50)

	match := calendar_date.MatchMode(cfg.Calendar.Match)
	switch cfg.Backend {
	case "rest":
		log.Infof("reading calendar dates from %s", cfg.Rest.Url)
		deps.Store = calendar_date.NewRestClient(cfg.Rest.Url, cfg.Rest.ApiKey, cfg.Calendar.Table, match, cfg.Rest.Timeout)
	default:
		if db == nil {
			return nil, fmt.Errorf("postgres backend requires a database connection")
		}
		deps.Store = calendar_date.NewRepository(db, cfg.Calendar.Table, match)
	}
	deps.Fetcher = calendar_date.NewFetcher(deps.Store, deps.Notifier)

	var results calendar_date.ResultStore
	if cfg.Cache.Redis.Addr != "" {
		deps.RedisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.Db,
		})
		results = calendar_date.NewRedisResultStore(deps.RedisClient, cfg.Cache.Ttl)
		log.Infof("caching calendar dates in redis at %s", cfg.Cache.Redis.Addr)
	} else {
		deps.MemoryCache = calendar_date.NewMemoryResultStore(deps.Clock, cfg.Cache.Ttl)
		results = deps.MemoryCache
	}
	deps.QueryCache = calendar_date.NewQueryCache(deps.Fetcher.FetchDatesForNiches, results, cfg.Render.FetchTimeout)

	locales, err := calendar_view.NewLocales(cfg.Render.Locale)
	if err != nil {
		return nil, err
	}
	deps.Locales = locales
	deps.HtmlRenderer = calendar_view.NewHtmlRenderer()
	deps.IcsRenderer = calendar_view.NewIcsRenderer()

	deps.CalendarHandler = calendar_page.NewHandler(
		deps.QueryCache,
		deps.Fetcher,
		deps.ToastLog,
		deps.HtmlRenderer,
		deps.IcsRenderer,
		deps.Locales,
		deps.Clock,
		cfg.Render.LoadingWait,
	)

	return deps, nil
}
