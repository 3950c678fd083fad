package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath string

	// Application configuration
	FeedsDir          string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Downloads
	CacheMaxAge    time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	ClearCache     bool
	RedisAddr      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
