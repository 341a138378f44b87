// Package log is the logging abstraction used by batchclock components.
//
// Components depend on the Logger interface. NewZerologAdapter builds the
// default implementation on zerolog, writing either human-readable console
// lines or JSON; NewNoopLogger discards everything and is meant for tests.
//
//	logger, err := log.NewZerologAdapter(os.Stderr, log.FormatJSON, "info")
//	if err != nil {
//	    return err
//	}
//	logger.Info("batch started", log.Batch("batch", id))
package log
