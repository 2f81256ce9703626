package app

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"linktrack/pkg/core/logger"
	"linktrack/pkg/core/tracer"
	"linktrack/system/shorturl/internal/model"
	"linktrack/system/shorturl/internal/service"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 1024
)

// OutcomeKind 解析成功后的响应方式
type OutcomeKind int

const (
	OutcomeRedirect OutcomeKind = iota
	OutcomePreview
)

// RedirectOutcome Redirect 时使用 Location，Preview 时使用 HTML
type RedirectOutcome struct {
	Kind     OutcomeKind
	Location string
	HTML     []byte
	Link     *model.Link
}

type PipelineConfig struct {
	Workers    int
	QueueSize  int
	BotPreview bool
}

type clickJob struct {
	ctx  context.Context
	link *model.Link
	cc   *model.ClickContext
}

// RedirectPipeline 解析短链并把点击记录交给后台 worker，跳转不等待记录完成
type RedirectPipeline struct {
	resolver *service.LinkResolver
	device   *service.DeviceParser
	recorder *service.ClickRecorder
	metrics  *service.MetricsCollector
	og       *OGRenderer
	preview  bool

	jobs   chan clickJob
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	log    *logger.Log
}

func NewRedirectPipeline(cfg PipelineConfig, resolver *service.LinkResolver, device *service.DeviceParser,
	recorder *service.ClickRecorder, metrics *service.MetricsCollector,
	og *OGRenderer, log *logger.Log) *RedirectPipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	p := &RedirectPipeline{
		resolver: resolver,
		device:   device,
		recorder: recorder,
		metrics:  metrics,
		og:       og,
		preview:  cfg.BotPreview,
		jobs:     make(chan clickJob, cfg.QueueSize),
		log:      log.WithEntryName("RedirectPipeline"),
	}
	p.log.WithField("workers", cfg.Workers).WithField("queue_size", cfg.QueueSize).Info("启动点击记录 worker")
	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Handle 不可用的短链返回 *model.ResolveError
func (p *RedirectPipeline) Handle(ctx context.Context, slug string, cc *model.ClickContext) (*RedirectOutcome, error) {
	if cc.ReceivedAt.IsZero() {
		cc.ReceivedAt = time.Now()
	}

	link, err := p.resolver.Resolve(ctx, slug)
	if err != nil {
		var re *model.ResolveError
		if errors.As(err, &re) {
			p.log.WithSlug(slug).WithField("reason", re.Reason).Debug("短链不可用")
		}
		return nil, err
	}

	device := p.device.Parse(cc.UserAgent)
	cc.Device = &device
	cc.ResponseTime = time.Since(cc.ReceivedAt)
	p.enqueue(ctx, link, cc)

	if device.IsBot && p.preview && p.og != nil {
		html, err := p.og.Render(link)
		if err == nil {
			return &RedirectOutcome{Kind: OutcomePreview, HTML: html, Link: link}, nil
		}
		p.log.WithErr(err).WithSlug(slug).Warn("渲染预览页失败，改为直接跳转")
	}
	return &RedirectOutcome{Kind: OutcomeRedirect, Location: BuildDestination(link), Link: link}, nil
}

// enqueue 队列已满时直接丢弃
func (p *RedirectPipeline) enqueue(ctx context.Context, link *model.Link, cc *model.ClickContext) {
	job := clickJob{ctx: tracer.Detach(ctx), link: link, cc: cc}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.WithSlug(link.Slug).Warn("点击队列已关闭，丢弃点击")
		return
	}
	select {
	case p.jobs <- job:
	default:
		p.log.WithSlug(link.Slug).WithField("queue_size", cap(p.jobs)).Warn("点击队列已满，丢弃点击")
		if p.metrics != nil {
			go p.metrics.RecordDrop(job.ctx)
		}
	}
}

func (p *RedirectPipeline) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.process(job)
	}
}

func (p *RedirectPipeline) process(job clickJob) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.WithSlug(job.link.Slug).WithField("panic", rec).Error("点击处理异常")
		}
	}()
	_, geo := p.recorder.Record(job.ctx, job.link, job.cc)
	if p.metrics != nil {
		p.metrics.RecordRedirect(job.ctx, job.link.Slug, geo.IsoCode, job.cc.ReceivedAt)
	}
}

// QueueLen 当前排队的点击数
func (p *RedirectPipeline) QueueLen() int {
	return len(p.jobs)
}

// Shutdown 停止接收新点击并等待队列中的点击处理完
func (p *RedirectPipeline) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.log.WithField("pending", len(p.jobs)).Warn("点击队列未处理完即退出")
		return ctx.Err()
	}
}

// BuildDestination 追加链接配置的默认 UTM 参数，目标地址已有的参数保持不变
func BuildDestination(link *model.Link) string {
	utm := link.DefaultUtm()
	if utm.IsEmpty() {
		return link.OriginalURL
	}
	u, err := url.Parse(link.OriginalURL)
	if err != nil {
		return link.OriginalURL
	}
	q := u.Query()
	utm.ApplyTo(q)
	u.RawQuery = q.Encode()
	return u.String()
}
