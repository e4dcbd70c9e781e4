package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD               = false
	LOG_LEVEL_PROD        = slog.LevelInfo
	TRACE_ID_KEY          = "traceId"
	RATE_LIMIT_PER_SECOND = 5
	//uploads and exports come in bursts from the dashboard
	BURST_RATE_LIMIT_PER_SECOND = 20

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//uploads
	MaxUploadSize      = 10 << 20 //10mb, same limit the upload picker advertises
	MultipartMemLimit  = 32 << 20
	UploadFormField    = "file"
	UploadFailedNotice = "Upload failed. Please try again."
	NoRawTextNotice    = "No raw text available for this document."

	//poller
	InitialProgress    = 10
	ProgressStep       = 10
	ProgressPendingCap = 90
	ProgressDone       = 100

	DefaultPollInterval    = 2 * time.Second
	DefaultHistoryInterval = 5 * time.Second
	TickerJitterStdev      = 30 * time.Millisecond

	//pdf pages that take longer than this are skipped
	PageExtractTimeout = 10 * time.Second

	//backend http pool
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore    = 0
	RedisResultCache = 1

	//redis timeouts
	RedisJobStoreTTL    = 24 * time.Hour
	RedisResultCacheTTL = 6 * time.Hour
)
