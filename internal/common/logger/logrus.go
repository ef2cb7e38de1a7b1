package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// LogrusLogger logrus实现
type LogrusLogger struct {
	logger *logrus.Logger
}

// NewLogrusLogger 创建LogrusLogger
func NewLogrusLogger(level, format, output, path string) (*LogrusLogger, error) {
	log := logrus.New()

	// 设置日志级别
	parseLevel, err := logrus.ParseLevel(level)
	if err != nil {
		parseLevel = logrus.DebugLevel
	}
	log.SetLevel(parseLevel)

	// 设置日志格式
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	writer, err := openOutput(output, path)
	if err != nil {
		return nil, err
	}
	log.SetOutput(writer)

	return &LogrusLogger{logger: log}, nil
}

// openOutput stdout 或 stdout+文件双写。
func openOutput(output, path string) (io.Writer, error) {
	if output != "file" {
		return os.Stdout, nil
	}
	// 确保目录存在
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return io.MultiWriter(os.Stdout, file), nil
}

func (l *LogrusLogger) Debug(args ...interface{}) {
	l.logger.Debug(args...)
}

func (l *LogrusLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *LogrusLogger) Info(args ...interface{}) {
	l.logger.Info(args...)
}

func (l *LogrusLogger) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

func (l *LogrusLogger) Warn(args ...interface{}) {
	l.logger.Warn(args...)
}

func (l *LogrusLogger) Warnf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *LogrusLogger) Error(args ...interface{}) {
	l.logger.Error(args...)
}

func (l *LogrusLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *LogrusLogger) Fatal(args ...interface{}) {
	l.logger.Fatal(args...)
}

func (l *LogrusLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Fatalf(format, args...)
}

func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	entry := l.logger.WithFields(logrus.Fields(fields))
	return &logrusEntry{entry: entry}
}

func (l *LogrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusEntry{entry: l.logger.WithField(key, value)}
}

// logrusEntry 带字段的子 logger（保留字段上下文）。
type logrusEntry struct {
	entry *logrus.Entry
}

func (l *logrusEntry) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *logrusEntry) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *logrusEntry) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *logrusEntry) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusEntry) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *logrusEntry) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusEntry) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *logrusEntry) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *logrusEntry) Fatal(args ...interface{})                 { l.entry.Fatal(args...) }
func (l *logrusEntry) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

func (l *logrusEntry) WithFields(fields map[string]interface{}) Logger {
	return &logrusEntry{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusEntry) WithField(key string, value interface{}) Logger {
	return &logrusEntry{entry: l.entry.WithField(key, value)}
}
