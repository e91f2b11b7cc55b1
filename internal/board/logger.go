package board

import "github.com/labstack/gommon/log"

// Logger is the subset of the echo/gommon logger the stores use.  Both
// echo.Logger and *log.Logger satisfy it.
type Logger interface {
    Debugf(format string, args ...interface{})
    Warnf(format string, args ...interface{})
}

func defaultLogger() Logger {
    l := log.New("board")
    l.SetLevel(log.WARN)
    return l
}
