// Package logger provides zerolog-backed structured logging for the stores
// and the operator CLI.
//
// Loggers are scoped per component and take fields as maps:
//
//	log := logger.Get("session-store")
//	log.Error("storage operation failed", logger.Fields(
//		logger.FieldOperation, "session.get",
//		logger.FieldStatement, stmt.String(),
//	))
package logger
