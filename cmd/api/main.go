package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/liliang-cn/cinelight/internal/auth"
	"github.com/liliang-cn/cinelight/internal/data"
	"github.com/liliang-cn/cinelight/internal/jsonlog"
	"github.com/liliang-cn/cinelight/internal/mailer"
)

var (
	buildTime string
	version   string
)

// 应用配置
type config struct {
	port int
	env  string
	db   struct {
		uri      string
		database string
	}
	jwt struct {
		secret string
		ttl    time.Duration
	}
	// uniqueKey 会被原样带在写操作的成功响应里
	uniqueKey string
	limiter   struct {
		rps     float64
		burst   int
		enabled bool
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	cors struct {
		trustedOrigins []string
	}
}

// 应用定义
type application struct {
	config config
	logger *jsonlog.Logger
	models data.Models
	tokens *auth.Manager
	mailer mailer.Mailer
	wg     sync.WaitGroup
}

func main() {
	var cfg config
	flag.IntVar(&cfg.port, "port", envInt("PORT", 8080), "API server port")
	flag.StringVar(&cfg.env, "env", envString("ENV", "development"), "Environment (development|staging|production)")
	flag.StringVar(&cfg.db.uri, "db-uri", envString("DB", "mongodb://localhost:27017"), "MongoDB connection URI")
	flag.StringVar(&cfg.db.database, "db-name", envString("DB_NAME", "cinelight"), "MongoDB database name")
	flag.StringVar(&cfg.jwt.secret, "jwt-secret", envString("SECRET_KEY", ""), "JWT signing secret")
	flag.DurationVar(&cfg.jwt.ttl, "jwt-ttl", 24*time.Hour, "JWT token lifetime")
	flag.StringVar(&cfg.uniqueKey, "unique-key", envString("UNIQUE_KEY", ""), "Key echoed back in write envelopes")
	flag.Float64Var(&cfg.limiter.rps, "limiter-rps", 2, "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 4, "Rate limiter maximum burst")
	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", true, "Enable rate limiter")
	flag.StringVar(&cfg.smtp.host, "smtp-host", envString("SMTP_HOST", ""), "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", envInt("SMTP_PORT", 25), "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", envString("SMTP_SENDER", "Cinelight <no-reply@liliang.dev>"), "SMTP sender")
	flag.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		cfg.cors.trustedOrigins = strings.Fields(val)
		return nil
	})

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	// 显示版本
	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		fmt.Printf("Build time:\t%s\n", buildTime)
		os.Exit(0)
	}

	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// 签名密钥不能为空，否则任何人都能伪造 Token
	if cfg.jwt.secret == "" {
		logger.PrintFatal(fmt.Errorf("jwt-secret (SECRET_KEY) must not be empty"), nil)
	}

	// 连接数据库
	client, err := openDB(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	// 退出前断开数据库连接
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(ctx)
	}()

	logger.PrintInfo("database connection established", map[string]string{
		"database": cfg.db.database,
	})

	db := client.Database(cfg.db.database)

	// 创建 username 和 title 的唯一索引
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = data.EnsureIndexes(ctx, db)
	cancel()
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	// 发布版本信息
	expvar.NewString("version").Set(version)

	// 发布活动的 goroutine 数
	expvar.Publish("goroutines", expvar.Func(func() interface{} {
		return runtime.NumGoroutine()
	}))

	// 发布正在使用的数据库名
	expvar.Publish("database", expvar.Func(func() interface{} {
		return cfg.db.database
	}))

	// 发布当前的时间信息
	expvar.Publish("timestamp", expvar.Func(func() interface{} {
		return time.Now().Unix()
	}))

	// 初始化应用
	app := &application{
		config: cfg,
		logger: logger,
		models: data.NewModels(db),
		tokens: auth.NewManager(cfg.jwt.secret, cfg.jwt.ttl),
		mailer: mailer.New(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender),
	}

	// 启动 server
	err = app.serve()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

// 连接数据库
func openDB(cfg config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.db.uri))
	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		return nil, err
	}

	return client, nil
}

// envString 读取环境变量，不存在时返回默认值
func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

// envInt 读取整型环境变量，不存在或者非法时返回默认值
func envInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return i
}
