package config

const (
	defaultLogDir        = "~/.local/share/theoraprobe/logs"
	defaultHistoryDB     = "~/.local/share/theoraprobe/history.db"
	defaultReadChunkSize = 64 * 1024
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"

	// MinReadChunkSize and MaxReadChunkSize bound demux.read_chunk_size.
	MinReadChunkSize = 512
	MaxReadChunkSize = 16 << 20

	logLevelEnv = "THEORAPROBE_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Demux: Demux{
			ReadChunkSize: defaultReadChunkSize,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
