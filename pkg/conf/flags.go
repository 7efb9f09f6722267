package conf

import "time"

// Flags for the run metadata and verdict storage backends. They are defined here
// so that every binary linking the storage helpers exposes a consistent surface.
var (
	// DefaultMetadataDB represents the database used for run metadata.
	DefaultMetadataDB = NewStringFlag("metadata_db", "Database for run metadata: cassandra or influxdb", "cassandra")

	// CassandraAddress represents Cassandra address flag.
	CassandraAddress = NewStringFlag("cassandra_addr", "Address of Cassandra DB endpoint", "127.0.0.1")
	// CassandraPort represents Cassandra port flag.
	CassandraPort = NewIntFlag("cassandra_port", "Port of Cassandra DB endpoint", 9042)
	// CassandraUsername holds the user name which would be used to connect to the Cassandra cluster.
	CassandraUsername = NewStringFlag("cassandra_username", "The user name which would be used to connect to the Cassandra cluster", "")
	// CassandraPassword holds the password which would be used to connect to the Cassandra cluster.
	CassandraPassword = NewStringFlag("cassandra_password", "The password which would be used to connect to the Cassandra cluster", "")
	// CassandraConnectionTimeout encodes the connection timeout of the Cassandra cluster.
	CassandraConnectionTimeout = NewDurationFlag("cassandra_timeout", "Timeout of the connection to the Cassandra cluster", 5*time.Second)
	// CassandraCreateKeyspace makes the storage helpers create the keyspace on connect.
	CassandraCreateKeyspace = NewBoolFlag("cassandra_create_keyspace", "Create the keyspace on connect when it does not exist", true)
	// CassandraKeyspaceName holds the keyspace used for analyzer tables.
	CassandraKeyspaceName = NewStringFlag("cassandra_keyspace", "The keyspace used for analyzer tables", "timing_analyzer")
	// CassandraSslEnabled determines whether the connection to the Cassandra cluster should be encrypted.
	CassandraSslEnabled = NewBoolFlag("cassandra_ssl", "Determines whether the connection to the Cassandra cluster should be encrypted", false)
	// CassandraSslHostValidation determines whether the server will be verified.
	CassandraSslHostValidation = NewBoolFlag("cassandra_ssl_host_validation", "Determines whether the Cassandra server will be verified against the CA certificate", false)
	// CassandraSslCAPath points to the CA certificate.
	CassandraSslCAPath = NewStringFlag("cassandra_ssl_ca_path", "Path to the CA certificate used to connect to the Cassandra cluster", "")
	// CassandraSslCertPath points to the client certificate.
	CassandraSslCertPath = NewStringFlag("cassandra_ssl_cert_path", "Path to the client certificate used to connect to the Cassandra cluster", "")
	// CassandraSslKeyPath points to the client key.
	CassandraSslKeyPath = NewStringFlag("cassandra_ssl_key_path", "Path to the client key used to connect to the Cassandra cluster", "")

	// InfluxDBAddress represents InfluxDB address flag.
	InfluxDBAddress = NewStringFlag("influxdb_addr", "Address of InfluxDB endpoint", "127.0.0.1")
	// InfluxDBPort represents InfluxDB port flag.
	InfluxDBPort = NewIntFlag("influxdb_port", "Port of InfluxDB endpoint", 8086)
	// InfluxDBUsername holds the user name which would be used to connect to InfluxDB.
	InfluxDBUsername = NewStringFlag("influxdb_username", "The user name which would be used to connect to InfluxDB", "")
	// InfluxDBPassword holds the password which would be used to connect to InfluxDB.
	InfluxDBPassword = NewStringFlag("influxdb_password", "The password which would be used to connect to InfluxDB", "")
	// InfluxDBName holds the name of the database used for analyzer measurements.
	InfluxDBName = NewStringFlag("influxdb_name", "The name of the InfluxDB database used for analyzer measurements", "timing_analyzer")
	// InfluxDBCreateDatabase makes the storage helpers create the database on connect.
	InfluxDBCreateDatabase = NewBoolFlag("influxdb_create_database", "Create the InfluxDB database on connect when it does not exist", true)
	// InfluxDBInsecureSkipVerify disables certificate validation for InfluxDB connections.
	InfluxDBInsecureSkipVerify = NewBoolFlag("influxdb_insecure_skip_verify", "Skip certificate validation for InfluxDB connections", false)
)
