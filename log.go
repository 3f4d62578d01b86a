package diskfs

import "github.com/sirupsen/logrus"

// LogLevel mirrors the handful of levels the watch multiplexer and the
// descriptor/write pipeline care about.
type LogLevel int

const (
	LogTrace LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

// A Logger is the logging sink consumed from the environment:
// trace/info/warn/error plus a way to read and be notified of level changes,
// which the non-recursive watcher and the watch multiplexer use
// to toggle verbose logging on their backends.
type Logger interface {
	Trace(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)

	GetLevel() LogLevel
	OnDidChangeLogLevel(listener func(LogLevel)) (unsubscribe func())
}

// Fields is a small alias for structured log fields, matching the
// key/value idiom logrus itself uses (logrus.Fields).
type Fields = map[string]interface{}

// logrusLogger adapts *logrus.Logger to the Logger contract. logrus has no
// built-in change-notification hook for SetLevel, so level changes are
// published through an Emitter populated by SetLevel below.
type logrusLogger struct {
	backend    *logrus.Logger
	levelEvent Emitter[LogLevel]
}

// NewLogrusLogger wraps backend (or a fresh logrus.Logger if nil) as a Logger.
func NewLogrusLogger(backend *logrus.Logger) Logger {
	if backend == nil {
		backend = logrus.New()
	}
	return &logrusLogger{backend: backend}
}

func (l *logrusLogger) Trace(msg string, fields Fields) {
	l.backend.WithFields(fields).Trace(msg)
}

func (l *logrusLogger) Info(msg string, fields Fields) {
	l.backend.WithFields(fields).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields Fields) {
	l.backend.WithFields(fields).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields Fields) {
	l.backend.WithFields(fields).Error(msg)
}

func (l *logrusLogger) GetLevel() LogLevel {
	return fromLogrusLevel(l.backend.GetLevel())
}

// SetLevel updates the backing logrus level and notifies subscribers.
func (l *logrusLogger) SetLevel(level LogLevel) {
	l.backend.SetLevel(toLogrusLevel(level))
	l.levelEvent.Fire(level)
}

func (l *logrusLogger) OnDidChangeLogLevel(listener func(LogLevel)) (unsubscribe func()) {
	return l.levelEvent.Subscribe(listener)
}

func toLogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case LogTrace:
		return logrus.TraceLevel
	case LogInfo:
		return logrus.InfoLevel
	case LogWarn:
		return logrus.WarnLevel
	case LogError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func fromLogrusLevel(level logrus.Level) LogLevel {
	switch level {
	case logrus.TraceLevel:
		return LogTrace
	case logrus.WarnLevel:
		return LogWarn
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return LogError
	default:
		return LogInfo
	}
}
