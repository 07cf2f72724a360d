package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `toml:"enabled"`
	UseConsoleWriter bool // human readable output instead of json lines
}

// RollingFile describes one lumberjack rotated log file.
type RollingFile struct {
	Name       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// LogFile implements a file based logger, split by level.
type LogFile struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	AccessLog        string `toml:"access"`
	AccessMaxSize    int    `toml:"accessMaxSize"`
	AccessMaxBackups int    `toml:"accessMaxBackups"`
	AccessMaxAge     int    `toml:"accessMaxAge"`

	ErrorLog        string `toml:"error"`
	ErrorMaxSize    int    `toml:"errorMaxSize"`
	ErrorMaxBackups int    `toml:"errorMaxBackups"`
	ErrorMaxAge     int    `toml:"errorMaxAge"`

	InfoLog        string `toml:"info"`
	InfoMaxSize    int    `toml:"infoMaxSize"`
	InfoMaxBackups int    `toml:"infoMaxBackups"`
	InfoMaxAge     int    `toml:"infoMaxAge"`

	TraceLog        string `toml:"trace"`
	TraceMaxSize    int    `toml:"traceMaxSize"`
	TraceMaxBackups int    `toml:"traceMaxBackups"`
	TraceMaxAge     int    `toml:"traceMaxAge"`

	WarnLog        string `toml:"warn"`
	WarnMaxSize    int    `toml:"warnMaxSize"`
	WarnMaxBackups int    `toml:"warnMaxBackups"`
	WarnMaxAge     int    `toml:"warnMaxAge"`
}

// Access returns the rolling file settings of the access log.
func (f LogFile) Access() RollingFile {
	return RollingFile{f.AccessLog, f.AccessMaxSize, f.AccessMaxBackups, f.AccessMaxAge}
}

func (f LogFile) errorFile() RollingFile {
	return RollingFile{f.ErrorLog, f.ErrorMaxSize, f.ErrorMaxBackups, f.ErrorMaxAge}
}

func (f LogFile) infoFile() RollingFile {
	return RollingFile{f.InfoLog, f.InfoMaxSize, f.InfoMaxBackups, f.InfoMaxAge}
}

func (f LogFile) traceFile() RollingFile {
	return RollingFile{f.TraceLog, f.TraceMaxSize, f.TraceMaxBackups, f.TraceMaxAge}
}

func (f LogFile) warnFile() RollingFile {
	return RollingFile{f.WarnLog, f.WarnMaxSize, f.WarnMaxBackups, f.WarnMaxAge}
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.
	LogEnv   string

	// EnableAccessLogToConsole writes the http access log to stdout.
	// Does not overrule Console.Enabled.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /api/health calls

	AppName     string
	ServiceName string

	Console Console
	File    LogFile `toml:"file"`
}
