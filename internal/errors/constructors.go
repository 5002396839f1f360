package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ReportError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *ReportError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *ReportError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Collaborator errors

func SourceUnavailable(url string, cause error) *ReportError {
	return Wrap(cause, CategorySource, SeverityError, "report source unavailable").
		WithContext("url", url)
}

func SchemaMissing(column string) *ReportError {
	return New(CategorySchema, SeverityWarning, "expected column missing from source").
		WithContext("column", column)
}

func GenerationFailed(cause error) *ReportError {
	return Wrap(cause, CategoryGeneration, SeverityError, "report generation failed")
}

func NotificationFailed(transport string, cause error) *ReportError {
	return Wrap(cause, CategoryNotification, SeverityWarning, "notification delivery failed").
		WithContext("transport", transport)
}

func PersistenceError(operation string, cause error) *ReportError {
	return Wrap(cause, CategoryPersistence, SeverityError, "state persistence failed").
		WithContext("operation", operation)
}

func SchedulerError(message string, cause error) *ReportError {
	return Wrap(cause, CategoryScheduler, SeverityError, message)
}

func InternalError(message string, cause error) *ReportError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
