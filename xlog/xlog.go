package xlog

import (
	"fmt"
	"os"
	"path/filepath"
	rsync "sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	timeKey         = "time"
	EncodingJson    = "json"
	EncodingConsole = "console"
	FileMode        = "file"
	StdoutMode      = "stdout"
)

var (
	levels = map[string]zapcore.Level{
		"debug": zap.DebugLevel,
		"info":  zap.InfoLevel,
		"error": zap.ErrorLevel,
		"warn":  zap.WarnLevel,
		"panic": zap.PanicLevel,
		"fatal": zap.FatalLevel,
	}

	atomicLogger *XLog
	mutex        rsync.RWMutex
)

type (
	// XLogConf is loaded from the "Log" section of the configuration file.
	XLogConf struct {
		ServiceName string `json:",default=irinabot"`
		// log path
		Path string `json:",optional"`
		// log file name
		Filename string `json:",default=irinabot.log"`
		//	file or stdout
		Mode string `json:",default=stdout,options=stdout|file"`
		//	json or console
		Encoding   string `json:",default=console,options=json|console"`
		TimeFormat string `json:",optional"`
		//	debug, info, error, warn, panic, fatal
		Level    string `json:",default=info"`
		Compress bool   `json:",optional"`
		KeepDays int    `json:",default=7"`
		// MaxSize is the rotation threshold in megabytes
		MaxSize int `json:",default=100"`
	}
	XLog struct {
		conf     XLogConf
		instance *zap.Logger
	}
)

func init() {
	conf := XLogConf{}
	defaultConf(&conf)
	atomicLogger = &XLog{
		conf:     conf,
		instance: instance(conf),
	}
}

// Load replaces the process logger. The previous logger is flushed.
func Load(conf *XLogConf) {
	defaultConf(conf)
	next := &XLog{conf: *conf, instance: instance(*conf)}

	mutex.Lock()
	prev := atomicLogger
	atomicLogger = next
	mutex.Unlock()

	_ = prev.instance.Sync()
}

// Write returns the process logger.
func Write() *zap.Logger {
	mutex.RLock()
	defer mutex.RUnlock()

	return atomicLogger.instance
}

// Named returns the process logger scoped to a component.
func Named(component string) *zap.Logger {
	return Write().Named(component)
}

// Sync flushes buffered log entries.
func Sync() error {
	return Write().Sync()
}

func instance(conf XLogConf) *zap.Logger {
	opts := []zap.Option{
		zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel),
	}
	if len(conf.ServiceName) > 0 {
		opts = append(opts, zap.Fields(zap.String("service", conf.ServiceName)))
	}

	var write zapcore.WriteSyncer
	switch conf.Mode {
	case FileMode:
		write = sync(conf)
	default:
		write = zapcore.Lock(os.Stdout)
	}

	level, ok := levels[conf.Level]
	if !ok {
		level = zap.InfoLevel
	}
	return zap.New(zapcore.NewCore(encoder(conf), write, level), opts...)
}

func sync(conf XLogConf) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename: filepath.Join(conf.Path, conf.Filename),
		Compress: conf.Compress,
		MaxAge:   conf.KeepDays,
		MaxSize:  conf.MaxSize,
	})
}

func encoder(conf XLogConf) zapcore.Encoder {
	econf := zap.NewProductionEncoderConfig()
	econf.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format(conf.TimeFormat))
	}
	econf.EncodeDuration = zapcore.StringDurationEncoder
	if conf.Level == "debug" && conf.Mode != FileMode {
		econf.EncodeLevel = zapcore.LowercaseColorLevelEncoder
	} else {
		econf.EncodeLevel = zapcore.LowercaseLevelEncoder
	}
	econf.TimeKey = timeKey
	if conf.Encoding == EncodingJson {
		return zapcore.NewJSONEncoder(econf)
	}
	return zapcore.NewConsoleEncoder(econf)
}

func defaultConf(conf *XLogConf) {
	if len(conf.Path) == 0 {
		path, _ := os.Getwd()
		conf.Path = fmt.Sprintf("%s/logs", path)
	}

	if len(conf.Level) == 0 {
		conf.Level = "info"
	}

	if len(conf.Filename) == 0 {
		conf.Filename = "irinabot.log"
	}

	if len(conf.Encoding) == 0 {
		conf.Encoding = EncodingConsole
	}

	if len(conf.TimeFormat) == 0 {
		conf.TimeFormat = "2006-01-02 15:04:05"
	}
}
