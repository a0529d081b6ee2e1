package logging

import (
	"io"
	"os"

	gologging "github.com/op/go-logging"
)

const format = `%{time:2006-01-02 15:04:05} %{level:.5s} %{module:-8s} %{message}`

// Init 设置全局日志后端与级别（DEBUG/INFO/NOTICE/WARNING/ERROR/CRITICAL）
func Init(level string) error {
	return InitWriter(os.Stdout, level)
}

// InitWriter 同 Init，输出到指定 writer
func InitWriter(w io.Writer, level string) error {
	baseBackend := gologging.NewLogBackend(w, "", 0)
	backendFormatter := gologging.NewBackendFormatter(baseBackend, gologging.MustStringFormatter(format))

	backendLeveled := gologging.AddModuleLevel(backendFormatter)
	levelCode, err := gologging.LogLevel(level)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(levelCode, "")

	gologging.SetBackend(backendLeveled)
	return nil
}
