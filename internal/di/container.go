package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-publish/internal/bulk"
	"github.com/goliatone/go-publish/internal/commands"
	publishcmd "github.com/goliatone/go-publish/internal/commands/publish"
	"github.com/goliatone/go-publish/internal/content"
	"github.com/goliatone/go-publish/internal/domain"
	adminhttp "github.com/goliatone/go-publish/internal/http"
	"github.com/goliatone/go-publish/internal/invariants"
	"github.com/goliatone/go-publish/internal/jobs"
	"github.com/goliatone/go-publish/internal/lifecycle"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/internal/runtimeconfig"
	"github.com/goliatone/go-publish/internal/scheduler"
	"github.com/goliatone/go-publish/pkg/activity"
	"github.com/goliatone/go-publish/pkg/activity/usersink"
	"github.com/goliatone/go-publish/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// Container wires the publish engine from runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	clock          func() time.Time

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	items   content.ItemRepository
	folders content.FolderRepository

	registry      *prometheus.Registry
	auditRecorder jobs.AuditRecorder
	activityHooks []activity.Hook
	emitter       *activity.Emitter

	machine     *lifecycle.Machine
	sweeper     *jobs.Sweeper
	auditor     *invariants.Auditor
	coordinator *bulk.Coordinator
	runner      *scheduler.Runner
	commands    *CommandSet
	admin       *adminhttp.AdminAPI
}

// CommandSet holds the go-command handlers for every publish operation.
type CommandSet struct {
	Sweep      *publishcmd.SweepHandler
	Audit      *publishcmd.AuditHandler
	Transition *publishcmd.TransitionHandler
	Bulk       *publishcmd.BulkHandler
	Repair     *publishcmd.RepairHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB supplies an open database instead of opening one from the
// storage config. The caller keeps ownership.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the folder cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithItemRepository replaces the item store.
func WithItemRepository(repo content.ItemRepository) Option {
	return func(c *Container) {
		c.items = repo
	}
}

// WithFolderRepository replaces the folder store.
func WithFolderRepository(repo content.FolderRepository) Option {
	return func(c *Container) {
		c.folders = repo
	}
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithRegistry sets the prometheus registry used for sweep and request metrics.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Container) {
		c.registry = registry
	}
}

func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(c *Container) {
		c.auditRecorder = recorder
	}
}

// WithActivityHooks forwards publish events to hooks.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithActivitySink forwards publish events to a go-users activity sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		if sink != nil {
			c.activityHooks = append(c.activityHooks, usersink.Hook{Sink: sink})
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(context.Background()); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureServices()
	return c, nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if ttl := c.Config.Cache.TTL.Std(); ttl > 0 {
			cfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("cache.disabled", "error", err)
			return
		}
		c.cacheService = service
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	repoOpts := []content.Option{content.WithClock(c.clock)}
	if c.items == nil {
		if c.bunDB != nil {
			c.items = content.NewBunItemRepository(c.bunDB, repoOpts...)
		} else {
			c.items = content.NewMemoryItemRepository(repoOpts...)
		}
	}
	if c.folders == nil {
		switch {
		case c.bunDB != nil && c.cacheService != nil:
			c.folders = content.NewBunFolderRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer, repoOpts...)
		case c.bunDB != nil:
			c.folders = content.NewBunFolderRepository(c.bunDB, repoOpts...)
		default:
			c.folders = content.NewMemoryFolderRepository(repoOpts...)
		}
	}
}

func (c *Container) configureServices() {
	provider := c.loggerProvider
	sched := c.Config.Scheduler
	bulkCfg := c.Config.Bulk
	if c.registry == nil && c.Config.HTTP.Metrics {
		c.registry = prometheus.NewRegistry()
	}

	c.machine = lifecycle.NewMachine(c.items,
		lifecycle.WithClock(c.clock),
		lifecycle.WithLogger(logging.ModuleLogger(provider, logging.LifecycleModule)),
	)

	c.emitter = activity.NewEmitter(c.activityHooks, activity.WithClock(c.clock))
	if c.auditRecorder == nil {
		c.auditRecorder = jobs.NewInMemoryAuditRecorder()
	}
	var metrics jobs.Metrics = jobs.NoOpMetrics()
	if c.registry != nil {
		metrics = jobs.NewPrometheusMetrics(c.registry)
	}
	c.sweeper = jobs.NewSweeper(c.items,
		jobs.WithClock(c.clock),
		jobs.WithLogger(logging.ModuleLogger(provider, logging.SweeperModule)),
		jobs.WithAuditRecorder(c.auditRecorder),
		jobs.WithActivityEmitter(c.emitter),
		jobs.WithMetrics(metrics),
		jobs.WithBatchSize(sched.BatchSize),
		jobs.WithConcurrency(sched.Concurrency),
		jobs.WithItemTimeout(sched.ItemTimeout.Std()),
	)

	c.auditor = invariants.NewAuditor(c.items,
		invariants.WithClock(c.clock),
		invariants.WithLogger(logging.ModuleLogger(provider, logging.InvariantsModule)),
	)

	c.coordinator = bulk.NewCoordinator(c.items, c.folders,
		bulk.WithClock(c.clock),
		bulk.WithLogger(logging.ModuleLogger(provider, logging.BulkModule)),
		bulk.WithMaxItems(bulkCfg.MaxItems),
		bulk.WithConcurrency(bulkCfg.Concurrency),
		bulk.WithItemTimeout(bulkCfg.ItemTimeout.Std()),
	)

	c.runner = scheduler.NewRunner(c.sweeper,
		scheduler.WithInterval(sched.Interval.Std()),
		scheduler.WithLogger(logging.ModuleLogger(provider, logging.SchedulerModule)),
	)

	c.commands = c.buildCommands()

	adminOpts := []adminhttp.AdminOption{
		adminhttp.WithBasePath(c.Config.HTTP.BasePath),
		adminhttp.WithItemService(c),
		adminhttp.WithSweepService(c),
		adminhttp.WithAuditService(c),
		adminhttp.WithBulkService(c),
		adminhttp.WithLogger(logging.ModuleLogger(provider, logging.HTTPModule)),
	}
	if c.Config.HTTP.Metrics {
		adminOpts = append(adminOpts, adminhttp.WithRegistry(c.registry))
	}
	c.admin = adminhttp.NewAdminAPI(adminOpts...)

	c.logger.Debug("container.configured",
		"storage", c.storageName(),
		"folder_cache", c.cacheService != nil,
		"metrics", c.registry != nil,
		"activity_hooks", len(c.activityHooks),
	)
}

func (c *Container) buildCommands() *CommandSet {
	provider := c.loggerProvider
	sched := c.Config.Scheduler

	var metrics *commands.Metrics
	if c.registry != nil {
		metrics = commands.NewMetrics(c.registry)
	}

	sweepLogger := commands.CommandLogger(provider, "sweep")
	sweepOpts := []publishcmd.SweepOption{
		publishcmd.SweepWithTelemetry(observed[publishcmd.SweepCommand](sweepLogger, metrics)),
	}
	if expr := strings.TrimSpace(sched.Cron); expr != "" {
		sweepOpts = append(sweepOpts, publishcmd.SweepWithCronExpression(expr))
	}

	auditLogger := commands.CommandLogger(provider, "invariants")
	transitionLogger := commands.CommandLogger(provider, "transition")
	bulkLogger := commands.CommandLogger(provider, "bulk")
	repairLogger := commands.CommandLogger(provider, "repair")
	return &CommandSet{
		Sweep: publishcmd.NewSweepHandler(c, sweepLogger, sweepOpts...),
		Audit: publishcmd.NewAuditHandler(c, auditLogger, nil,
			commands.WithTelemetry(observed[publishcmd.AuditCommand](auditLogger, metrics)),
		),
		Transition: publishcmd.NewTransitionHandler(c, transitionLogger, nil,
			commands.WithTelemetry(observed[publishcmd.TransitionCommand](transitionLogger, metrics)),
		),
		Bulk: publishcmd.NewBulkHandler(c, bulkLogger, nil,
			commands.WithTelemetry(observed[publishcmd.BulkCommand](bulkLogger, metrics)),
		),
		Repair: publishcmd.NewRepairHandler(c, repairLogger, nil,
			commands.WithTelemetry(observed[publishcmd.RepairCommand](repairLogger, metrics)),
		),
	}
}

// observed logs every command outcome and counts it when metrics are on.
func observed[T command.Message](logger interfaces.Logger, metrics *commands.Metrics) commands.Telemetry[T] {
	if metrics == nil {
		return commands.DefaultTelemetry[T](logger)
	}
	return commands.ChainTelemetry(
		commands.DefaultTelemetry[T](logger),
		commands.MetricsTelemetry[T](metrics),
	)
}

func (c *Container) storageName() string {
	if c.bunDB != nil {
		return c.bunDB.Dialect().Name().String()
	}
	return runtimeconfig.StorageMemory
}

// Subscription is returned by go-command dispatcher subscriptions.
type Subscription interface {
	Unsubscribe()
}

// SubscribeCommands registers every command handler with the go-command
// dispatcher so publish messages can be dispatched by type.
func (c *Container) SubscribeCommands() []Subscription {
	set := c.commands
	return []Subscription{
		dispatcher.SubscribeCommand(set.Sweep),
		dispatcher.SubscribeCommand(set.Audit),
		dispatcher.SubscribeCommand(set.Transition),
		dispatcher.SubscribeCommand(set.Bulk),
		dispatcher.SubscribeCommand(set.Repair),
	}
}

// GetItem loads one item.
func (c *Container) GetItem(ctx context.Context, id uuid.UUID) (*content.Item, error) {
	return c.items.GetByID(ctx, id)
}

// Transition applies a single version-checked transition.
func (c *Container) Transition(ctx context.Context, req lifecycle.TransitionRequest) (*content.Item, error) {
	return c.machine.Transition(ctx, req)
}

// RunSweep publishes every due item of kind, or of every kind when nil.
func (c *Container) RunSweep(ctx context.Context, kind *domain.Kind) (*jobs.SweepReport, error) {
	return c.sweeper.Run(ctx, kind)
}

// AuditInvariants classifies every item of kind.
func (c *Container) AuditInvariants(ctx context.Context, kind domain.Kind) (*invariants.Report, error) {
	return c.auditor.Audit(ctx, kind)
}

// BulkMutate applies one operation to many items.
func (c *Container) BulkMutate(ctx context.Context, req bulk.Request) (*bulk.Result, error) {
	return c.coordinator.Apply(ctx, req)
}

// RepairOrphans fixes orphaned schedules of kind.
func (c *Container) RepairOrphans(ctx context.Context, kind domain.Kind, strategy bulk.Strategy, at *time.Time) (*bulk.RepairResult, error) {
	return c.coordinator.Repair(ctx, kind, strategy, at)
}

// DeleteFolder removes a folder and detaches its members.
func (c *Container) DeleteFolder(ctx context.Context, id uuid.UUID) (int, error) {
	return content.DeleteFolder(ctx, c.folders, c.items, id)
}

// StartScheduler starts the periodic sweep when it is enabled in config.
func (c *Container) StartScheduler(ctx context.Context) error {
	if !c.Config.Scheduler.Enabled {
		c.logger.Info("scheduler.disabled")
		return nil
	}
	return c.runner.Start(ctx)
}

// Close stops the scheduler and closes a database the container opened.
func (c *Container) Close() error {
	if c.runner != nil {
		c.runner.Stop()
	}
	if c.ownsDB && c.bunDB != nil {
		if err := c.bunDB.Close(); err != nil {
			return fmt.Errorf("di: close database: %w", err)
		}
	}
	return nil
}

func (c *Container) Items() content.ItemRepository { return c.items }

func (c *Container) Folders() content.FolderRepository { return c.folders }

func (c *Container) Machine() *lifecycle.Machine { return c.machine }

func (c *Container) Sweeper() *jobs.Sweeper { return c.sweeper }

func (c *Container) Auditor() *invariants.Auditor { return c.auditor }

func (c *Container) Coordinator() *bulk.Coordinator { return c.coordinator }

func (c *Container) Scheduler() *scheduler.Runner { return c.runner }

func (c *Container) Commands() *CommandSet { return c.commands }

func (c *Container) AdminAPI() *adminhttp.AdminAPI { return c.admin }

func (c *Container) AuditRecorder() jobs.AuditRecorder { return c.auditRecorder }

// Registry returns the prometheus registry, or nil when metrics are off.
func (c *Container) Registry() *prometheus.Registry { return c.registry }

func (c *Container) Logger() interfaces.Logger { return c.logger }

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
