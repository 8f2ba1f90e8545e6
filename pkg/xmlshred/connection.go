package xmlshred

import "time"

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AppName is reported to the server as application_name.
	AppName string

	ConnectTimeout   time.Duration
	AdditionalParams map[string]string
}
