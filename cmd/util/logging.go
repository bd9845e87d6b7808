package util

import "github.com/techwm-project/techwm/pkg/logger"

var LoggingMode = logger.LogModeDefault
