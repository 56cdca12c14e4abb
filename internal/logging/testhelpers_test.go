package logging

import (
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

func newTestLumberjack(dir string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename: filepath.Join(dir, "kryptocd.log"),
		MaxSize:  1,
	}
}
