package store

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/config"
)

// Mirror receives a copy of each published catalogue.
type Mirror interface {
	Name() string
	Publish(ctx context.Context, snap *catalog.Snapshot, details []*catalog.Detail) error
	Close(ctx context.Context) error
}

// Publisher sends a snapshot to every configured mirror.
type Publisher struct {
	mirrors []Mirror
	logger  *log.Logger
}

// NewPublisher returns a publisher over mirrors. A nil logger uses the
// default logger.
func NewPublisher(logger *log.Logger, mirrors ...Mirror) *Publisher {
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{mirrors: mirrors, logger: logger}
}

// Len returns the number of mirrors.
func (p *Publisher) Len() int { return len(p.mirrors) }

// Publish pushes snap and details to each mirror in turn. Failures are
// logged and reported, never returned.
func (p *Publisher) Publish(ctx context.Context, snap *catalog.Snapshot, details []*catalog.Detail) []catalog.PublishReport {
	reports := make([]catalog.PublishReport, 0, len(p.mirrors))
	for _, m := range p.mirrors {
		start := time.Now()
		r := catalog.PublishReport{Target: m.Name()}
		if err := m.Publish(ctx, snap, details); err != nil {
			r.Err = err.Error()
			p.logger.Warn("mirror failed", "target", r.Target, "err", err)
		} else {
			p.logger.Info("mirrored", "target", r.Target, "skills", snap.Total,
				"details", len(details), "duration", time.Since(start).Round(time.Millisecond))
		}
		reports = append(reports, r)
	}
	return reports
}

// Close closes every mirror, returning the first error.
func (p *Publisher) Close(ctx context.Context) error {
	var first error
	for _, m := range p.mirrors {
		if err := m.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewFromConfig builds a publisher for every mirror enabled in cfg. A
// mirror that cannot be set up is kept as a failing target so the failure
// shows up in the run report.
func NewFromConfig(ctx context.Context, cfg config.PublishConfig, out config.OutputConfig, logger *log.Logger) *Publisher {
	var mirrors []Mirror
	if cfg.S3.Enabled() {
		m, err := NewS3Mirror(cfg.S3, out)
		if err != nil {
			mirrors = append(mirrors, brokenMirror{name: "s3://" + cfg.S3.Bucket, err: err})
		} else {
			mirrors = append(mirrors, m)
		}
	}
	if cfg.Mongo.Enabled() {
		m, err := NewMongoMirror(ctx, cfg.Mongo)
		if err != nil {
			mirrors = append(mirrors, brokenMirror{name: "mongodb://" + cfg.Mongo.Database + "." + cfg.Mongo.Collection, err: err})
		} else {
			mirrors = append(mirrors, m)
		}
	}
	return NewPublisher(logger, mirrors...)
}

type brokenMirror struct {
	name string
	err  error
}

func (b brokenMirror) Name() string { return b.name }

func (b brokenMirror) Publish(context.Context, *catalog.Snapshot, []*catalog.Detail) error {
	return b.err
}

func (b brokenMirror) Close(context.Context) error { return nil }
