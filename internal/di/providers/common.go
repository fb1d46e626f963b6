package providers

import "time"

// shutdownTimeout bounds draining in-flight HTTP requests on shutdown.
const shutdownTimeout = 15 * time.Second
