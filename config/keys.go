package config

const (
	delimiter = "."

	LogPrefix      = "log"
	LogLevel       = LogPrefix + delimiter + "level"
	LogDevelopment = LogPrefix + delimiter + "development"
	LogEncoding    = LogPrefix + delimiter + "encoding"

	StorePrefix         = "store"
	StoreBufferSize     = StorePrefix + delimiter + "buffer_size"
	StoreChangePrinting = StorePrefix + delimiter + "change_printing"

	SharedPrefix  = "shared"
	SharedBackend = SharedPrefix + delimiter + "backend"

	SharedNotifyPrefix     = SharedPrefix + delimiter + "notify"
	SharedNotifyBufferSize = SharedNotifyPrefix + delimiter + "buffer_size"
	SharedNotifyNumWorkers = SharedNotifyPrefix + delimiter + "num_workers"

	SharedFilePrefix       = SharedPrefix + delimiter + "file"
	SharedFileDir          = SharedFilePrefix + delimiter + "dir"
	SharedFilePollInterval = SharedFilePrefix + delimiter + "poll_interval"
	SharedFileCacheMaxCost = SharedFilePrefix + delimiter + "cache_max_cost"

	SharedSQLitePrefix       = SharedPrefix + delimiter + "sqlite"
	SharedSQLitePath         = SharedSQLitePrefix + delimiter + "path"
	SharedSQLitePollInterval = SharedSQLitePrefix + delimiter + "poll_interval"

	SharedS3Prefix       = SharedPrefix + delimiter + "s3"
	SharedS3Bucket       = SharedS3Prefix + delimiter + "bucket"
	SharedS3KeyPrefix    = SharedS3Prefix + delimiter + "prefix"
	SharedS3Region       = SharedS3Prefix + delimiter + "region"
	SharedS3Endpoint     = SharedS3Prefix + delimiter + "endpoint"
	SharedS3PollInterval = SharedS3Prefix + delimiter + "poll_interval"

	FactPrefix  = "fact"
	FactBaseURL = FactPrefix + delimiter + "base_url"
	FactTimeout = FactPrefix + delimiter + "timeout"

	ServerPrefix = "server"
	ServerAddr   = ServerPrefix + delimiter + "addr"
)
