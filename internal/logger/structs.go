package logger

// Console implements a console based logger.
type Console struct {
	Enabled bool
	// Pretty switches from JSON lines to zerolog.ConsoleWriter output.
	Pretty bool
	// AccessLog mirrors the HTTP access log to stdout.
	AccessLog bool
}

// RollingFile is one lumberjack target.
type RollingFile struct {
	Name       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// LogFile implements a file based logger split by level.
type LogFile struct {
	Enabled bool
	Path    string

	Error RollingFile
	Warn  RollingFile
	Info  RollingFile
	Trace RollingFile

	// Access receives the HTTP access log of the status API.
	Access RollingFile
}

// Log implements the logger config.
type Log struct {
	LogLevel     string // trace, debug, info, warn, error.
	ReportCaller bool

	// DisableCheckAlive suppresses access logging of /checkalive.
	DisableCheckAlive bool

	AppName     string
	ServiceName string

	Console Console
	File    LogFile
}
