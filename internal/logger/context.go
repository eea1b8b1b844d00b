package logger

// Component-specific logger functions

// CLI returns a logger for command handling.
func CLI() Logger {
	return WithField("component", "cli")
}

// Config returns a logger for service-definition loading.
func Config() Logger {
	return WithField("component", "config")
}

// Introspect returns a logger for the introspection pipeline.
func Introspect() Logger {
	return WithField("component", "introspect")
}

// DB returns a logger for database connections.
func DB() Logger {
	return WithField("component", "db")
}

// Client returns a logger for management-API calls.
func Client() Logger {
	return WithField("component", "client")
}
