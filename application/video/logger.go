package video

// Logger is the logging surface the trim pipeline needs
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Successf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{})   {}
func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Successf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})    {}
func (nopLogger) Errorf(string, ...interface{})   {}
