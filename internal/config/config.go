// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Editor   EditorConfig   `yaml:"editor"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置（只读基础数据字典）
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig Redis配置（历史持久化）
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// Addr 返回Redis地址
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EditorConfig 课表编辑引擎配置
type EditorConfig struct {
	MaxUndo        int           `yaml:"max_undo"`        // 撤销栈容量
	MaxSuggestions int           `yaml:"max_suggestions"` // 最大调课建议数
	ChainMaxDepth  int           `yaml:"chain_max_depth"` // 链式调整最大步数
	MaxExplored    int           `yaml:"max_explored"`    // 链式搜索状态上限
	HistoryTTL     time.Duration `yaml:"history_ttl"`     // 历史持久化过期时间
}

// Load 从环境变量加载配置，存在 .env 文件时先行载入
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "paike"),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "paike"),
			User:            getEnv("DB_USER", "paike"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		Editor: EditorConfig{
			MaxUndo:        getEnvInt("EDITOR_MAX_UNDO", 50),
			MaxSuggestions: getEnvInt("EDITOR_MAX_SUGGESTIONS", 5),
			ChainMaxDepth:  getEnvInt("EDITOR_CHAIN_MAX_DEPTH", 4),
			MaxExplored:    getEnvInt("EDITOR_MAX_EXPLORED", 2000),
			HistoryTTL:     getEnvDuration("EDITOR_HISTORY_TTL", 7*24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Editor.MaxUndo <= 0 {
		return fmt.Errorf("EDITOR_MAX_UNDO 必须为正数")
	}
	if c.Editor.ChainMaxDepth < 0 {
		return fmt.Errorf("EDITOR_CHAIN_MAX_DEPTH 不能为负数")
	}
	if c.Editor.MaxExplored <= 0 {
		return fmt.Errorf("EDITOR_MAX_EXPLORED 必须为正数")
	}
	return nil
}

// getEnv 获取字符串环境变量
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// getEnvInt 获取整数环境变量
func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration 获取时长环境变量
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
