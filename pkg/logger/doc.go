// Package logger provides the structured logging interface used across vidscraper.
//
// It wraps zerolog. Output is a colored console stream on stderr by default,
// or JSON lines when the logging format is "json"; a log file can be added
// next to it.
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "debug"})
//
//	log := logger.GetLogger().WithField("platform", "instagram")
//	log.DebugWithFields("strategy attempt", map[string]interface{}{
//	    "strategy": "json_ld",
//	})
//
// Components accept a Logger and fall back to NewNopLogger when none is
// given. Tests use NewTestLogger to assert on captured messages.
package logger
