package logging

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used by every engine component.
type Logger interface {
	Debug(args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Sublogger returns a logger named "<name>.<subname>" that shares this logger's appenders.
	Sublogger(subname string) Logger
	// AddAppender adds an output to this logger and every logger sharing its appenders.
	AddAppender(appender Appender)
	SetLevel(level Level)
	GetLevel() Level
	Sync() error
}

// impl forwards to a zap sugared logger whose only core is a fanout over the appenders.
type impl struct {
	name  string
	core  *fanout
	sugar *zap.SugaredLogger
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	core := &fanout{
		level: zap.NewAtomicLevelAt(level.AsZap()),
		inUTC: inUTC,
		sinks: &sinks{list: appenders},
	}
	return core.logger(name)
}

func (imp *impl) Debug(args ...interface{}) { imp.sugar.Debug(args...) }

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.sugar.Debugw(msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) { imp.sugar.Info(args...) }

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.sugar.Infow(msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) { imp.sugar.Warn(args...) }

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.sugar.Warnw(msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) { imp.sugar.Error(args...) }

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.sugar.Errorw(msg, keysAndValues...)
}

// Sublogger starts at the parent's current level; later level changes are independent.
func (imp *impl) Sublogger(subname string) Logger {
	core := &fanout{
		level: zap.NewAtomicLevelAt(imp.core.level.Level()),
		inUTC: imp.core.inUTC,
		sinks: imp.core.sinks,
	}
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return core.logger(name)
}

func (imp *impl) AddAppender(appender Appender) {
	imp.core.sinks.add(appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.core.level.SetLevel(level.AsZap())
}

func (imp *impl) GetLevel() Level {
	return levelFromZap(imp.core.level.Level())
}

func (imp *impl) Sync() error {
	return imp.core.Sync()
}

type sinks struct {
	mu   sync.RWMutex
	list []Appender
}

func (s *sinks) add(a Appender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, a)
}

func (s *sinks) snapshot() []Appender {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list
}

// fanout is a zapcore.Core writing every enabled entry to each appender in turn.
type fanout struct {
	level  zap.AtomicLevel
	inUTC  bool
	sinks  *sinks
	fields []zapcore.Field
}

func (f *fanout) logger(name string) *impl {
	// one frame for the impl method between the caller and the sugared logger
	base := zap.New(f, zap.AddCaller(), zap.AddCallerSkip(1))
	return &impl{name: name, core: f, sugar: base.Named(name).Sugar()}
}

func (f *fanout) Enabled(level zapcore.Level) bool {
	return f.level.Enabled(level)
}

func (f *fanout) With(fields []zapcore.Field) zapcore.Core {
	clone := *f
	clone.fields = append(append([]zapcore.Field(nil), f.fields...), fields...)
	return &clone
}

func (f *fanout) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if f.Enabled(entry.Level) {
		return checked.AddCore(entry, f)
	}
	return checked
}

func (f *fanout) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if f.inUTC {
		entry.Time = entry.Time.UTC()
	}
	if len(f.fields) > 0 {
		fields = append(append([]zapcore.Field(nil), f.fields...), fields...)
	}
	var err error
	for _, appender := range f.sinks.snapshot() {
		err = multierr.Append(err, appender.Write(entry, fields))
	}
	return err
}

func (f *fanout) Sync() error {
	var err error
	for _, appender := range f.sinks.snapshot() {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}
