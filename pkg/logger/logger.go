// Package logger 提供统一的日志框架
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// EditorLogger 课表编辑引擎专用日志器
type EditorLogger struct {
	base *zerolog.Logger
}

// NewEditorLogger 创建编辑引擎日志器
func NewEditorLogger() *EditorLogger {
	l := Get().With().Str("component", "editor").Logger()
	return &EditorLogger{base: &l}
}

// MutationApplied 记录变更落位
func (l *EditorLogger) MutationApplied(opType, opID, description string) {
	l.base.Info().
		Str("op_type", opType).
		Str("op_id", opID).
		Str("description", description).
		Msg("变更已应用")
}

// UndoFailed 记录撤销失败
func (l *EditorLogger) UndoFailed(opID string, err error) {
	l.base.Warn().
		Str("op_id", opID).
		Err(err).
		Msg("撤销失败")
}

// RedoFailed 记录重做失败
func (l *EditorLogger) RedoFailed(opID string, err error) {
	l.base.Warn().
		Str("op_id", opID).
		Err(err).
		Msg("重做失败")
}

// SearchComplete 记录调课搜索完成
func (l *EditorLogger) SearchComplete(suggestions int, duration time.Duration) {
	l.base.Debug().
		Int("suggestions", suggestions).
		Dur("duration", duration).
		Msg("调课搜索完成")
}

// PersistenceFailure 记录持久化失败（历史保持内存可用）
func (l *EditorLogger) PersistenceFailure(key string, err error) {
	l.base.Warn().
		Str("key", key).
		Err(err).
		Msg("历史持久化失败")
}
