package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Razorpay RazorpayConfig `mapstructure:"razorpay"`
	Credits  CreditsConfig  `mapstructure:"credits"`
	Plans    []PlanConfig   `mapstructure:"plans"`
	OSS      OSSConfig      `mapstructure:"oss"`
	Export   ExportConfig   `mapstructure:"export"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AuthConfig 身份提供方的 JWT 验签公钥（RS256）
type AuthConfig struct {
	JWTPublicKey string `mapstructure:"jwt_public_key"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type GeminiConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Temperature    float32 `mapstructure:"temperature"`
	ModifyTemp     float32 `mapstructure:"modify_temperature"`
	MaxOutputToken int32   `mapstructure:"max_output_tokens"`
}

type RazorpayConfig struct {
	KeyID     string `mapstructure:"key_id"`
	KeySecret string `mapstructure:"key_secret"`
	Currency  string `mapstructure:"currency"`
}

// CreditsConfig 积分规则
type CreditsConfig struct {
	Initial      int `mapstructure:"initial"`       // 新用户初始积分
	MonthlyFloor int `mapstructure:"monthly_floor"` // 每月免费补足下限
}

type PlanConfig struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Credits     int    `mapstructure:"credits"`
	Amount      int    `mapstructure:"amount"` // 单位：paise
	Description string `mapstructure:"description"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

// ExportConfig 视频导出限制
type ExportConfig struct {
	MaxDurationMS int   `mapstructure:"max_duration_ms"` // 单次录制最长时长
	GraceSeconds  int   `mapstructure:"grace_seconds"`   // 录制超时宽限
	MaxVideoBytes int64 `mapstructure:"max_video_bytes"` // 上传视频大小上限
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Credits.Initial == 0 {
		cfg.Credits.Initial = 20
	}
	if cfg.Credits.MonthlyFloor == 0 {
		cfg.Credits.MonthlyFloor = 10
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Gemini.TimeoutSeconds == 0 {
		cfg.Gemini.TimeoutSeconds = 30
	}
	if cfg.Gemini.Temperature == 0 {
		cfg.Gemini.Temperature = 0.7
	}
	if cfg.Gemini.ModifyTemp == 0 {
		cfg.Gemini.ModifyTemp = 0.5
	}
	if cfg.Gemini.MaxOutputToken == 0 {
		cfg.Gemini.MaxOutputToken = 2048
	}
	if cfg.Razorpay.Currency == "" {
		cfg.Razorpay.Currency = "INR"
	}
	if cfg.Export.MaxDurationMS == 0 {
		cfg.Export.MaxDurationMS = 30000
	}
	if cfg.Export.GraceSeconds == 0 {
		cfg.Export.GraceSeconds = 15
	}
	if cfg.Export.MaxVideoBytes == 0 {
		cfg.Export.MaxVideoBytes = 64 << 20
	}
	if len(cfg.Plans) == 0 {
		cfg.Plans = []PlanConfig{
			{ID: "basic", Name: "Basic Pack", Credits: 20, Amount: 499, Description: "Perfect for beginners"},
			{ID: "standard", Name: "Standard Pack", Credits: 50, Amount: 999, Description: "Most popular option"},
			{ID: "premium", Name: "Premium Pack", Credits: 120, Amount: 1999, Description: "Best value for money"},
		}
	}
}

// FindPlan 按 ID 查找套餐
func (c *Config) FindPlan(planID string) (*PlanConfig, bool) {
	for i := range c.Plans {
		if c.Plans[i].ID == planID {
			return &c.Plans[i], true
		}
	}
	return nil, false
}
